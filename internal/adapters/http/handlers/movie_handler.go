package handlers

import (
	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/response"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
)

// MovieHandler handles movie endpoints
type MovieHandler struct {
	store *sandbox.Store
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(store *sandbox.Store) *MovieHandler {
	return &MovieHandler{store: store}
}

func movies(c *fiber.Ctx, list []domain.Movie) error {
	return response.List(c, list, len(list))
}

// ListMovies lists all active movies
// @Summary List movies
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/movies [get]
func (h *MovieHandler) ListMovies(c *fiber.Ctx) error {
	return movies(c, h.store.Movies(nil))
}

// ListFunding lists movies open for funding
// @Summary List movies open for funding
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/movies/funding [get]
func (h *MovieHandler) ListFunding(c *fiber.Ctx) error {
	return movies(c, h.store.MoviesForFunding())
}

// Search searches movies by keyword
// @Summary Search movies
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Param keyword query string true "Keyword"
// @Success 200 {object} response.Response
// @Router /api/movies/search [get]
func (h *MovieHandler) Search(c *fiber.Ctx) error {
	keyword := c.Query("keyword")
	if keyword == "" {
		return response.BadRequest(c, "Keyword is required")
	}
	return movies(c, h.store.SearchMovies(keyword))
}

// BudgetRange lists movies with minBudget <= budget <= maxBudget
// @Summary List movies by budget range
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Param minBudget query number true "Minimum budget"
// @Param maxBudget query number true "Maximum budget"
// @Success 200 {object} response.Response
// @Router /api/movies/budget-range [get]
func (h *MovieHandler) BudgetRange(c *fiber.Ctx) error {
	minBudget, ok1 := queryFloat(c, "minBudget")
	maxBudget, ok2 := queryFloat(c, "maxBudget")
	if !ok1 || !ok2 || minBudget > maxBudget {
		return response.BadRequest(c, "Invalid budget range")
	}
	return movies(c, h.store.MoviesByBudgetRange(minBudget, maxBudget))
}

// ByProducer lists the movies of a producer
// @Summary List movies by producer
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Producer ID"
// @Success 200 {object} response.Response
// @Router /api/movies/producer/{id} [get]
func (h *MovieHandler) ByProducer(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid producer ID")
	}
	return movies(c, h.store.MoviesByProducer(id))
}

// ByStatus lists movies in a status
// @Summary List movies by status
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Param status path string true "Status"
// @Success 200 {object} response.Response
// @Router /api/movies/status/{status} [get]
func (h *MovieHandler) ByStatus(c *fiber.Ctx) error {
	return movies(c, h.store.MoviesByStatus(c.Params("status")))
}

// ByGenre lists movies of a genre
// @Summary List movies by genre
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Param genre path string true "Genre"
// @Success 200 {object} response.Response
// @Router /api/movies/genre/{genre} [get]
func (h *MovieHandler) ByGenre(c *fiber.Ctx) error {
	return movies(c, h.store.MoviesByGenre(c.Params("genre")))
}

// GetMovie returns one movie
// @Summary Get movie by ID
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/movies/{id} [get]
func (h *MovieHandler) GetMovie(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	movie, err := h.store.Movie(id)
	if err != nil {
		return storeError(c, err, "Movie not found")
	}
	return response.Success(c, "", movie)
}

// CreateMovie creates a movie; producers always create for themselves
// @Summary Create movie
// @Tags Movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body domain.MovieInput true "Movie"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/movies [post]
func (h *MovieHandler) CreateMovie(c *fiber.Ctx) error {
	var in domain.MovieInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if role, _ := c.Locals("role").(string); role == string(domain.RoleProducer) {
		in.ProducerID = currentUserID(c)
	}
	movie, err := h.store.CreateMovie(in)
	if err != nil {
		return storeError(c, err, "Movie not found")
	}
	return response.Created(c, "Movie created successfully", movie)
}

// UpdateMovie replaces the editable fields of a movie
// @Summary Update movie
// @Tags Movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param body body domain.MovieInput true "Movie"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/movies/{id} [put]
func (h *MovieHandler) UpdateMovie(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	var in domain.MovieInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	movie, err := h.store.UpdateMovie(id, in)
	if err != nil {
		return storeError(c, err, "Movie not found")
	}
	return response.Success(c, "Movie updated successfully", movie)
}

// UpdateStatus sets the status of a movie
// @Summary Update movie status
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param status query string true "Status"
// @Success 200 {object} response.Response
// @Router /api/movies/{id}/status [put]
func (h *MovieHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	movie, err := h.store.UpdateMovieStatus(id, c.Query("status"))
	if err != nil {
		return storeError(c, err, "Movie not found")
	}
	return response.Success(c, "Movie status updated", movie)
}

// UpdateFunding adds to the raised amount of a movie
// @Summary Update movie funding
// @Tags Movies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param amount query number true "Amount"
// @Success 200 {object} response.Response
// @Router /api/movies/{id}/funding [put]
func (h *MovieHandler) UpdateFunding(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid movie ID")
	}
	amount, ok := queryFloat(c, "amount")
	if !ok {
		return response.BadRequest(c, "Invalid amount")
	}
	movie, err := h.store.AddFunding(id, amount)
	if err != nil {
		return storeError(c, err, "Movie not found")
	}
	return response.Success(c, "Movie funding updated", movie)
}
