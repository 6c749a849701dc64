package domain

import "strings"

// Role represents user role in the system
type Role string

const (
	RoleInvestor Role = "INVESTOR"
	RoleProducer Role = "PRODUCER"
	RoleAdmin    Role = "ADMIN"
)

// MovieStatus is the lifecycle status of a movie as reported by the movie service.
// Values the client does not know are carried through unchanged.
type MovieStatus string

const (
	MovieFunding        MovieStatus = "FUNDING"
	MovieFunded         MovieStatus = "FUNDED"
	MovieInProduction   MovieStatus = "IN_PRODUCTION"
	MovieProduction     MovieStatus = "PRODUCTION"
	MoviePostProduction MovieStatus = "POST_PRODUCTION"
	MovieReleased       MovieStatus = "RELEASED"
	MovieCancelled      MovieStatus = "CANCELLED"
)

// Label renders the status for display ("IN_PRODUCTION" -> "IN PRODUCTION").
func (s MovieStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// InvestmentStatus is the status of a single investment
type InvestmentStatus string

const (
	InvestmentPending    InvestmentStatus = "PENDING"
	InvestmentConfirmed  InvestmentStatus = "CONFIRMED"
	InvestmentCancelled  InvestmentStatus = "CANCELLED"
	InvestmentRefunded   InvestmentStatus = "REFUNDED"
	InvestmentReturnPaid InvestmentStatus = "RETURN_PAID"
)

// UserSummary is the cached current-user snapshot.
// It is replaced wholesale on every login or registration.
type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// FullName joins first and last name
func (u UserSummary) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// User is the full account record returned by the user service
type User struct {
	UserSummary
	WalletBalance float64 `json:"walletBalance"`
	IsActive      bool    `json:"isActive"`
	CreatedAt     string  `json:"createdAt,omitempty"`
}

// Validate rejects a user payload without an id
func (u User) Validate() error {
	if u.ID <= 0 {
		return ErrMissingID
	}
	return nil
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// UserUpdate carries the mutable user fields
type UserUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// Movie is a read-only snapshot of a movie project.
// Dates are ISO-8601 calendar dates as sent by the movie service.
type Movie struct {
	ID                       int64       `json:"id"`
	Title                    string      `json:"title"`
	Description              string      `json:"description,omitempty"`
	Storyline                string      `json:"storyline,omitempty"`
	Budget                   float64     `json:"budget"`
	RaisedAmount             float64     `json:"raisedAmount"`
	ExpectedReturnPercentage *float64    `json:"expectedReturnPercentage,omitempty"`
	ProducerID               int64       `json:"producerId"`
	ProducerName             string      `json:"producerName,omitempty"`
	DirectorName             string      `json:"directorName,omitempty"`
	Cast                     string      `json:"cast,omitempty"`
	Genre                    string      `json:"genre,omitempty"`
	ReleaseDate              string      `json:"releaseDate,omitempty"`
	FundingDeadline          string      `json:"fundingDeadline,omitempty"`
	Status                   MovieStatus `json:"status"`
	PosterURL                string      `json:"posterUrl,omitempty"`
	TrailerURL               string      `json:"trailerUrl,omitempty"`
	IsActive                 bool        `json:"isActive"`
}

// Validate rejects a movie payload without an id
func (m Movie) Validate() error {
	if m.ID <= 0 {
		return ErrMissingID
	}
	return nil
}

// FundingProgress returns the raised share of the budget in percent
func (m Movie) FundingProgress() float64 {
	if m.Budget <= 0 {
		return 0
	}
	return m.RaisedAmount / m.Budget * 100
}

// MovieInput is the create/update payload for a movie
type MovieInput struct {
	Title                    string   `json:"title"`
	Description              string   `json:"description,omitempty"`
	Storyline                string   `json:"storyline,omitempty"`
	Budget                   float64  `json:"budget"`
	ExpectedReturnPercentage *float64 `json:"expectedReturnPercentage,omitempty"`
	ProducerID               int64    `json:"producerId"`
	ProducerName             string   `json:"producerName,omitempty"`
	DirectorName             string   `json:"directorName,omitempty"`
	Cast                     string   `json:"cast,omitempty"`
	Genre                    string   `json:"genre,omitempty"`
	ReleaseDate              string   `json:"releaseDate,omitempty"`
	FundingDeadline          string   `json:"fundingDeadline,omitempty"`
	PosterURL                string   `json:"posterUrl,omitempty"`
	TrailerURL               string   `json:"trailerUrl,omitempty"`
}

// Investment is the server-side record of a pledge toward a movie
type Investment struct {
	ID                       int64            `json:"id"`
	UserID                   int64            `json:"userId"`
	MovieID                  int64            `json:"movieId"`
	ProducerID               int64            `json:"producerId"`
	Amount                   float64          `json:"amount"`
	Currency                 string           `json:"currency,omitempty"`
	TransactionID            string           `json:"transactionId"`
	Status                   InvestmentStatus `json:"status"`
	UserName                 string           `json:"userName,omitempty"`
	MovieTitle               string           `json:"movieTitle,omitempty"`
	ProducerName             string           `json:"producerName,omitempty"`
	ExpectedReturnPercentage float64          `json:"expectedReturnPercentage"`
	ActualReturnAmount       float64          `json:"actualReturnAmount"`
	ReturnPaid               bool             `json:"returnPaid"`
	ExpectedReturn           float64          `json:"expectedReturn"`
	InvestmentDate           string           `json:"investmentDate,omitempty"`
	ReturnPaymentDate        string           `json:"returnPaymentDate,omitempty"`
}

// Validate rejects an investment payload without an id
func (i Investment) Validate() error {
	if i.ID <= 0 {
		return ErrMissingID
	}
	return nil
}

// InvestmentRequest is the payload the client sends to create an investment
type InvestmentRequest struct {
	UserID                   int64    `json:"userId"`
	MovieID                  int64    `json:"movieId"`
	ProducerID               int64    `json:"producerId"`
	Amount                   float64  `json:"amount"`
	Currency                 string   `json:"currency,omitempty"`
	PaymentMethod            string   `json:"paymentMethod,omitempty"`
	UserName                 string   `json:"userName,omitempty"`
	MovieTitle               string   `json:"movieTitle,omitempty"`
	ProducerName             string   `json:"producerName,omitempty"`
	ExpectedReturnPercentage *float64 `json:"expectedReturnPercentage,omitempty"`
}

// ReturnRequest is the producer-scoped return payment payload
type ReturnRequest struct {
	TotalRevenue float64 `json:"totalRevenue"`
	Notes        string  `json:"notes,omitempty"`
}

// ProducerReturnResult reports a return run for one movie
type ProducerReturnResult struct {
	MovieID              int64   `json:"movieId"`
	ProducerID           int64   `json:"producerId"`
	TotalRevenue         float64 `json:"totalRevenue"`
	InvestmentsProcessed int     `json:"investmentsProcessed"`
	Notes                string  `json:"notes,omitempty"`
	ProcessedAt          string  `json:"processedAt,omitempty"`
}

// MovieReturn is one movie inside a bulk return run
type MovieReturn struct {
	MovieID              int64   `json:"movieId"`
	MovieTitle           string  `json:"movieTitle,omitempty"`
	Revenue              float64 `json:"revenue"`
	InvestmentsProcessed int     `json:"investmentsProcessed"`
}

// BulkReturnResult reports a return run across all movies of a producer
type BulkReturnResult struct {
	ProducerID                int64         `json:"producerId"`
	MoviesProcessed           []MovieReturn `json:"moviesProcessed"`
	TotalMovies               int           `json:"totalMovies"`
	TotalRevenueProcessed     float64       `json:"totalRevenueProcessed"`
	TotalInvestmentsProcessed int           `json:"totalInvestmentsProcessed"`
	ProcessedAt               string        `json:"processedAt,omitempty"`
}

// MovieReturnSummary is the per-movie breakdown of a producer summary
type MovieReturnSummary struct {
	MovieID          int64   `json:"movieId"`
	MovieTitle       string  `json:"movieTitle,omitempty"`
	InvestmentCount  int     `json:"investmentCount"`
	TotalInvested    float64 `json:"totalInvested"`
	TotalReturnsPaid float64 `json:"totalReturnsPaid"`
}

// ReturnSummary aggregates the return position of a producer
type ReturnSummary struct {
	ProducerID            int64                `json:"producerId"`
	TotalInvestments      int                  `json:"totalInvestments"`
	TotalInvestmentAmount float64              `json:"totalInvestmentAmount"`
	PaidReturns           int                  `json:"paidReturns"`
	UnpaidReturns         int                  `json:"unpaidReturns"`
	TotalReturnsPaid      float64              `json:"totalReturnsPaid"`
	PendingReturns        float64              `json:"pendingReturns"`
	Movies                []MovieReturnSummary `json:"movies,omitempty"`
}

// Investor aggregates investments of one user within a producer scope
type Investor struct {
	UserID          int64   `json:"userId"`
	UserName        string  `json:"userName,omitempty"`
	TotalInvested   float64 `json:"totalInvested"`
	InvestmentCount int     `json:"investmentCount"`
}
