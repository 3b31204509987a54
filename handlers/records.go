package handlers

import (
	"errors"
	"net/http"

	recordsRepo "nestmart/database/repository/records"
	"nestmart/middleware"
	"nestmart/models"
	"nestmart/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// RecordsHandler serves schemaless CRUD for one collection.
type RecordsHandler struct {
	Repo recordsRepo.DocumentRepository
	// ListFilter builds the filter for GET on the collection root.
	ListFilter func(c *gin.Context) bson.M
	// PrepareWrite adjusts a client body before it is stored. An error
	// rejects the write with 400.
	PrepareWrite func(doc bson.M, create bool) error
}

// NewRecordsHandler serves repo with a title search on "searchText".
func NewRecordsHandler(repo recordsRepo.DocumentRepository) *RecordsHandler {
	return &RecordsHandler{Repo: repo, ListFilter: searchFilter}
}

// NewPropertiesHandler serves listings. Anonymous callers only see public
// listings; an authenticated caller may pass all=true. Payment state is
// never taken from a client body, but an update may publish or hide a
// listing by hand.
func NewPropertiesHandler(repo recordsRepo.DocumentRepository) *RecordsHandler {
	return &RecordsHandler{
		Repo: repo,
		ListFilter: func(c *gin.Context) bson.M {
			filter := searchFilter(c)
			if c.Query("all") == "true" && middleware.Authenticated(c) {
				return filter
			}
			filter["publishStatus"] = string(models.PublishStatusPublic)
			return filter
		},
		PrepareWrite: func(doc bson.M, create bool) error {
			publish, override := doc["publishStatus"]
			for _, k := range models.PaymentOwnedFields {
				delete(doc, k)
			}
			if create {
				doc["paymentStatus"] = string(models.PaymentStatusDue)
				doc["publishStatus"] = string(models.PublishStatusHidden)
				doc["transactionId"] = ""
				return nil
			}
			if override {
				status, err := parsePublishStatus(publish)
				if err != nil {
					return err
				}
				doc["publishStatus"] = string(status)
			}
			return nil
		},
	}
}

var errInvalidPublishStatus = errors.New("publishStatus must be hidden or public")

func parsePublishStatus(v interface{}) (models.PublishStatus, error) {
	s, _ := v.(string)
	switch status := models.PublishStatus(s); status {
	case models.PublishStatusHidden, models.PublishStatusPublic:
		return status, nil
	}
	return "", errInvalidPublishStatus
}

func searchFilter(c *gin.Context) bson.M {
	if text := c.Query("searchText"); text != "" {
		return recordsRepo.TitleSearch(text)
	}
	return bson.M{}
}

// ListHandler handles GET on the collection root.
func (h *RecordsHandler) ListHandler(c *gin.Context) {
	filter := bson.M{}
	if h.ListFilter != nil {
		filter = h.ListFilter(c)
	}
	h.find(c, filter)
}

// ListByParamHandler lists documents whose field equals the named path param.
func (h *RecordsHandler) ListByParamHandler(field, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value := c.Param(param)
		if value == "" {
			utils.JSONError(c, getLogger(c), http.StatusBadRequest, param+" not found", "")
			return
		}
		h.find(c, bson.M{field: value})
	}
}

func (h *RecordsHandler) find(c *gin.Context, filter bson.M) {
	logger := getLogger(c)
	docs, err := h.Repo.Find(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to fetch documents", err.Error())
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetHandler handles GET /<collection>/:id. A missing document renders null.
func (h *RecordsHandler) GetHandler(c *gin.Context) {
	logger := getLogger(c)
	doc, err := h.Repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, logger, err, "Failed to fetch document")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// CreateHandler handles POST /<collection>.
func (h *RecordsHandler) CreateHandler(c *gin.Context) {
	logger := getLogger(c)
	var doc bson.M
	if err := c.ShouldBindJSON(&doc); err != nil || doc == nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "Invalid request body", bindDetails(err))
		return
	}
	if h.PrepareWrite != nil {
		if err := h.PrepareWrite(doc, true); err != nil {
			utils.JSONError(c, logger, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	res, err := h.Repo.Insert(c.Request.Context(), doc)
	if err != nil {
		h.writeError(c, logger, err, "Failed to create document")
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateHandler handles PATCH /<collection>/:id with a $set of the body.
func (h *RecordsHandler) UpdateHandler(c *gin.Context) {
	logger := getLogger(c)
	var fields bson.M
	if err := c.ShouldBindJSON(&fields); err != nil || fields == nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "Invalid request body", bindDetails(err))
		return
	}
	if h.PrepareWrite != nil {
		if err := h.PrepareWrite(fields, false); err != nil {
			utils.JSONError(c, logger, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	res, err := h.Repo.UpdateByID(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.writeError(c, logger, err, "Failed to update document")
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteHandler handles DELETE /<collection>/:id.
func (h *RecordsHandler) DeleteHandler(c *gin.Context) {
	logger := getLogger(c)
	res, err := h.Repo.DeleteByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, logger, err, "Failed to delete document")
		return
	}
	c.JSON(http.StatusOK, res)
}

func bindDetails(err error) string {
	if err == nil {
		return "body must be a JSON object"
	}
	return err.Error()
}

func (h *RecordsHandler) writeError(c *gin.Context, logger *zap.Logger, err error, message string) {
	if errors.Is(err, recordsRepo.ErrInvalidID) {
		utils.JSONError(c, logger, http.StatusBadRequest, "Id invalid", err.Error())
		return
	}
	utils.JSONError(c, logger, http.StatusInternalServerError, message, err.Error())
}
