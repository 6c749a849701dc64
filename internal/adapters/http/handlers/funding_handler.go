package handlers

import (
	"fmt"

	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/response"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
)

// FundingHandler handles investment and return endpoints
type FundingHandler struct {
	store *sandbox.Store
}

// NewFundingHandler creates a new funding handler
func NewFundingHandler(store *sandbox.Store) *FundingHandler {
	return &FundingHandler{store: store}
}

func investments(c *fiber.Ctx, list []domain.Investment) error {
	return response.List(c, list, len(list))
}

// producerScope reads the producer id param; a PRODUCER may only act on itself
// When ok is false the response has been written and err is its write error.
func producerScope(c *fiber.Ctx) (id int64, ok bool, err error) {
	id, ok = paramID(c, "producerId")
	if !ok {
		return 0, false, response.BadRequest(c, "Invalid producer ID")
	}
	if role, _ := c.Locals("role").(string); role == string(domain.RoleProducer) && currentUserID(c) != id {
		return 0, false, response.Forbidden(c, "You can only manage your own movies")
	}
	return id, true, nil
}

// Invest creates a PENDING investment
// @Summary Create investment
// @Tags Funding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body domain.InvestmentRequest true "Investment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/funding/invest [post]
func (h *FundingHandler) Invest(c *fiber.Ctx) error {
	var req domain.InvestmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == 0 {
		req.UserID = currentUserID(c)
	}
	inv, err := h.store.CreateInvestment(req)
	if err != nil {
		return storeError(c, err, "User or movie not found")
	}
	return response.Created(c, "Investment created successfully", inv)
}

// Confirm confirms a PENDING investment
// @Summary Confirm investment
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param transactionId path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/funding/confirm/{transactionId} [put]
func (h *FundingHandler) Confirm(c *fiber.Ctx) error {
	inv, err := h.store.ConfirmInvestment(c.Params("transactionId"))
	if err != nil {
		return storeError(c, err, "Investment not found")
	}
	return response.Success(c, "Investment confirmed successfully", inv)
}

// Cancel cancels a PENDING investment
// @Summary Cancel investment
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param transactionId path string true "Transaction ID"
// @Param reason query string false "Reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/funding/cancel/{transactionId} [put]
func (h *FundingHandler) Cancel(c *fiber.Ctx) error {
	inv, err := h.store.CancelInvestment(c.Params("transactionId"), c.Query("reason"))
	if err != nil {
		return storeError(c, err, "Investment not found")
	}
	return response.Success(c, "Investment cancelled successfully", inv)
}

// GetInvestment returns an investment by id
// @Summary Get investment
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param id path int true "Investment ID"
// @Success 200 {object} response.Response
// @Router /api/funding/investment/{id} [get]
func (h *FundingHandler) GetInvestment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid investment ID")
	}
	inv, err := h.store.Investment(id)
	if err != nil {
		return storeError(c, err, "Investment not found")
	}
	return response.Success(c, "", inv)
}

// GetByTransaction returns an investment by transaction id
// @Summary Get investment by transaction
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param transactionId path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Router /api/funding/transaction/{transactionId} [get]
func (h *FundingHandler) GetByTransaction(c *fiber.Ctx) error {
	inv, err := h.store.InvestmentByTransaction(c.Params("transactionId"))
	if err != nil {
		return storeError(c, err, "Investment not found")
	}
	return response.Success(c, "", inv)
}

// ByUser lists the investments of a user
// @Summary List investments by user
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/funding/user/{id} [get]
func (h *FundingHandler) ByUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	return investments(c, h.store.InvestmentsByUser(id))
}

// UserMovies lists the movie ids a user has confirmed investments in
// @Summary List invested movie ids
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/funding/user/{id}/movies [get]
func (h *FundingHandler) UserMovies(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	ids := h.store.MovieIDsByUser(id)
	return response.List(c, ids, len(ids))
}

// ByMovie lists the investments in a movie
// @Summary List investments by movie
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 200 {object} response.Response
// @Router /api/funding/movie/{id} [get]
func (h *FundingHandler) ByMovie(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	return investments(c, h.store.InvestmentsByMovie(id))
}

// ConfirmedByMovie lists the confirmed investments in a movie
// @Summary List confirmed investments by movie
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 200 {object} response.Response
// @Router /api/funding/movie/{id}/confirmed [get]
func (h *FundingHandler) ConfirmedByMovie(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	return investments(c, h.store.ConfirmedByMovie(id))
}

// ByProducer lists the investments in a producer's movies
// @Summary List investments by producer
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param producerId path int true "Producer ID"
// @Success 200 {object} response.Response
// @Router /api/funding/producer/{producerId} [get]
func (h *FundingHandler) ByProducer(c *fiber.Ctx) error {
	id, ok := paramID(c, "producerId")
	if !ok {
		return response.BadRequest(c, "Invalid producer ID")
	}
	return investments(c, h.store.InvestmentsByProducer(id))
}

// ProcessReturns distributes totalRevenue over the unpaid investments of a movie
// @Summary Process returns for a movie
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param movieId path int true "Movie ID"
// @Param totalRevenue query number true "Total revenue"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/funding/returns/{movieId} [post]
func (h *FundingHandler) ProcessReturns(c *fiber.Ctx) error {
	id, ok := paramID(c, "movieId")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	revenue, ok := queryFloat(c, "totalRevenue")
	if !ok {
		return response.BadRequest(c, "Invalid total revenue")
	}
	res, err := h.store.ProcessReturns(id, revenue)
	if err != nil {
		return storeError(c, err, "Movie not found")
	}
	return response.Success(c, fmt.Sprintf("Returns processed for %d investments", res.InvestmentsProcessed), res)
}

// Unpaid lists confirmed investments whose return is not paid
// @Summary List unpaid returns
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/funding/returns/unpaid [get]
func (h *FundingHandler) Unpaid(c *fiber.Ctx) error {
	return investments(c, h.store.UnpaidReturns())
}

// UnpaidByMovie lists unpaid returns of a movie
// @Summary List unpaid returns by movie
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 200 {object} response.Response
// @Router /api/funding/returns/unpaid/movie/{id} [get]
func (h *FundingHandler) UnpaidByMovie(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	return investments(c, h.store.UnpaidReturnsByMovie(id))
}

// Investors lists the investors of a producer
// @Summary List investors of a producer
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param producerId path int true "Producer ID"
// @Success 200 {object} response.Response
// @Router /api/funding/producer/{producerId}/investors [get]
func (h *FundingHandler) Investors(c *fiber.Ctx) error {
	id, ok, err := producerScope(c)
	if !ok {
		return err
	}
	list := h.store.Investors(id, 0)
	return response.List(c, list, len(list))
}

// MovieInvestors lists the investors of one producer movie
// @Summary List investors of a producer movie
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param producerId path int true "Producer ID"
// @Param movieId path int true "Movie ID"
// @Success 200 {object} response.Response
// @Router /api/funding/producer/{producerId}/movie/{movieId}/investors [get]
func (h *FundingHandler) MovieInvestors(c *fiber.Ctx) error {
	id, ok, err := producerScope(c)
	if !ok {
		return err
	}
	movieID, ok := paramID(c, "movieId")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	list := h.store.Investors(id, movieID)
	return response.List(c, list, len(list))
}

// ProducerReturns pays returns for one producer movie
// @Summary Process returns for a producer movie
// @Tags Returns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param producerId path int true "Producer ID"
// @Param movieId path int true "Movie ID"
// @Param body body domain.ReturnRequest true "Revenue"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/funding/producer/{producerId}/movie/{movieId}/returns [post]
func (h *FundingHandler) ProducerReturns(c *fiber.Ctx) error {
	id, ok, err := producerScope(c)
	if !ok {
		return err
	}
	movieID, ok := paramID(c, "movieId")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	var req domain.ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	res, err := h.store.ProcessReturnsForProducer(id, movieID, req)
	if err != nil {
		return storeError(c, err, "No investments found for this producer and movie")
	}
	return response.Success(c, "Returns processed successfully", res)
}

// BulkReturns pays returns for several producer movies; the body maps
// "movie_<id>" to revenue
// @Summary Process returns for all producer movies
// @Tags Returns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param producerId path int true "Producer ID"
// @Param body body map[string]number true "Revenue per movie"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/funding/producer/{producerId}/returns/bulk [post]
func (h *FundingHandler) BulkReturns(c *fiber.Ctx) error {
	id, ok, err := producerScope(c)
	if !ok {
		return err
	}
	var body map[string]float64
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	revenues, err := sandbox.ParseBulkRevenues(body)
	if err != nil {
		return storeError(c, err, "")
	}
	res, err := h.store.ProcessReturnsForAllProducerMovies(id, revenues)
	if err != nil {
		return storeError(c, err, "No investments found for this producer")
	}
	return response.Success(c, "Bulk returns processed successfully", res)
}

// ReturnSummary summarizes the returns of a producer
// @Summary Producer return summary
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param producerId path int true "Producer ID"
// @Success 200 {object} response.Response
// @Router /api/funding/producer/{producerId}/returns/summary [get]
func (h *FundingHandler) ReturnSummary(c *fiber.Ctx) error {
	id, ok, err := producerScope(c)
	if !ok {
		return err
	}
	return response.Success(c, "", h.store.ReturnSummary(id))
}
