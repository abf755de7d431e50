package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"licitia/internal/models"

	"go.uber.org/zap"
)

// maxImportSize caps uploaded spreadsheets at 20 MiB.
const maxImportSize = 20 << 20

type Service interface {
	SearchTenders(ctx context.Context, f models.TenderFilter) (models.TenderPage, error)
	GetTender(ctx context.Context, tenderId, companyName string) (models.Tender, error)
	AddTender(ctx context.Context, tender models.Tender) (models.Tender, error)

	GetExperiences(ctx context.Context, companyName string) ([]models.Experience, error)
	GetExperience(ctx context.Context, experienceId string) (models.Experience, error)
	AddExperience(ctx context.Context, exp models.Experience) (models.Experience, error)
	DeleteExperience(ctx context.Context, experienceId string) error
	ImportExperiences(ctx context.Context, companyName string, r io.Reader) (models.ImportResult, error)
}

type Controller struct {
	service Service
	log     *zap.Logger
}

func NewController(service Service, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{service: service, log: log}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Tenders

// GET /api/tenders
func (c *Controller) GetTenders(w http.ResponseWriter, r *http.Request) {
	filter, err := c.parseTenderFilter(r.URL.Query())
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := c.service.SearchTenders(r.Context(), filter)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, page)
}

// GET /api/tenders/{tenderId}
func (c *Controller) GetTender(w http.ResponseWriter, r *http.Request) {
	tenderId := r.PathValue("tenderId")
	if len(tenderId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty tenderId supplied")
		return
	}

	companyName := r.URL.Query().Get("company_name")

	tender, err := c.service.GetTender(r.Context(), tenderId, companyName)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, tender)
}

// POST /api/tenders
func (c *Controller) NewTender(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	tender, err := ParseNewTenderReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tender, err = c.service.AddTender(r.Context(), tender)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	c.marshalResponse(w, tender)
}

//// Experiences

type ExperienceListResponse struct {
	Items []models.Experience `json:"items"`
	Total int                 `json:"total"`
}

// GET /api/experiences
func (c *Controller) GetExperiences(w http.ResponseWriter, r *http.Request) {
	companyName := r.URL.Query().Get("company_name")

	experiences, err := c.service.GetExperiences(r.Context(), companyName)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}
	if experiences == nil {
		experiences = []models.Experience{}
	}

	c.marshalResponse(w, ExperienceListResponse{Items: experiences, Total: len(experiences)})
}

// GET /api/experiences/{experienceId}
func (c *Controller) GetExperience(w http.ResponseWriter, r *http.Request) {
	experienceId := r.PathValue("experienceId")
	if len(experienceId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty experienceId supplied")
		return
	}

	exp, err := c.service.GetExperience(r.Context(), experienceId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, exp)
}

// POST /api/experiences
func (c *Controller) NewExperience(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	exp, err := ParseNewExperienceReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	exp, err = c.service.AddExperience(r.Context(), exp)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	c.marshalResponse(w, exp)
}

// DELETE /api/experiences/{experienceId}
func (c *Controller) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	experienceId := r.PathValue("experienceId")
	if len(experienceId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty experienceId supplied")
		return
	}

	err := c.service.DeleteExperience(r.Context(), experienceId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ImportResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
	Message  string   `json:"message"`
}

// POST /api/experiences/import
func (c *Controller) ImportExperiences(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "missing 'file' form field with xlsx content")
		return
	}
	defer file.Close()

	companyName := r.FormValue("company_name")

	result, err := c.service.ImportExperiences(r.Context(), companyName, file)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	if result.Errors == nil {
		result.Errors = []string{}
	}

	c.marshalResponse(w, ImportResponse{
		Imported: result.Imported,
		Errors:   result.Errors,
		Message:  fmt.Sprintf("imported %d rows, rejected %d", result.Imported, len(result.Errors)),
	})
}

//// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

func (c *Controller) parseTenderFilter(query url.Values) (models.TenderFilter, error) {
	filter := models.TenderFilter{
		Department:       query.Get("department"),
		ContractType:     query.Get("contract_type"),
		ContractModality: query.Get("contract_modality"),
		CompanyName:      query.Get("company_name"),
	}

	var err error

	filter.Limit, err = c.getQueryInt(query, "limit")
	if err != nil {
		return filter, fmt.Errorf("invalid value of 'limit' query parameter: %s", query.Get("limit"))
	}
	filter.Offset, err = c.getQueryInt(query, "offset")
	if err != nil {
		return filter, fmt.Errorf("invalid value of 'offset' query parameter: %s", query.Get("offset"))
	}

	filter.OnlyRelevant, err = c.getQueryBool(query, "only_interventoria")
	if err != nil {
		return filter, fmt.Errorf("invalid value of 'only_interventoria' query parameter: %s", query.Get("only_interventoria"))
	}
	filter.MatchExperience, err = c.getQueryBool(query, "match_experience")
	if err != nil {
		return filter, fmt.Errorf("invalid value of 'match_experience' query parameter: %s", query.Get("match_experience"))
	}

	if str := query.Get("date_from"); len(str) > 0 {
		t, err := parseQueryDate(str)
		if err != nil {
			return filter, fmt.Errorf("invalid value of 'date_from' query parameter: %s", str)
		}
		filter.DateFrom = &t
	}
	if str := query.Get("date_to"); len(str) > 0 {
		t, err := parseQueryDate(str)
		if err != nil {
			return filter, fmt.Errorf("invalid value of 'date_to' query parameter: %s", str)
		}
		filter.DateTo = &t
	}

	if str := query.Get("min_match_score"); len(str) > 0 {
		score, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid value of 'min_match_score' query parameter: %s", str)
		}
		filter.MinMatchScore = &score
	}

	return filter, nil
}

func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	strs, ok := query[key]
	if ok && len(strs) > 0 {
		return strconv.Atoi(strs[0])
	}
	return 0, nil
}

func (c *Controller) getQueryBool(query url.Values, key string) (bool, error) {
	strs, ok := query[key]
	if ok && len(strs) > 0 {
		return strconv.ParseBool(strs[0])
	}
	return false, nil
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		c.log.Error("error response marshal failed", zap.Error(err))
		return
	}

	_, err = w.Write(data)
	if err != nil {
		c.log.Error("error response write failed", zap.Error(err))
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNoTender):
		c.errorResponse(w, http.StatusNotFound, "requested tender does not exist")
	case errors.Is(err, models.ErrNoExperience):
		c.errorResponse(w, http.StatusNotFound, "requested experience does not exist")
	case errors.Is(err, models.ErrMatchTimeout):
		c.errorResponse(w, http.StatusGatewayTimeout, "experience matching did not finish in time")
	default:
		c.log.Error("request failed", zap.Error(err))
		c.errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	_, err = w.Write(d)
	if err != nil {
		c.log.Error("response write failed", zap.Error(err))
		return
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
