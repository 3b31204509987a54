package handlers

import (
	"net/http"
	"strings"

	recordsRepo "nestmart/database/repository/records"
	"nestmart/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler serves the users collection. Generic reads and deletes go
// through the embedded RecordsHandler.
type UserHandler struct {
	*RecordsHandler
	BcryptCost int
}

// NewUserHandler creates a UserHandler over repo.
func NewUserHandler(repo recordsRepo.DocumentRepository) *UserHandler {
	h := &UserHandler{BcryptCost: bcrypt.DefaultCost}
	h.RecordsHandler = &RecordsHandler{Repo: repo, ListFilter: searchFilter}
	return h
}

// RegisterUserHandler handles POST /users. Every new user gets role "user".
func (h *UserHandler) RegisterUserHandler(c *gin.Context) {
	logger := getLogger(c)

	var user bson.M
	if err := c.ShouldBindJSON(&user); err != nil || user == nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "Invalid request body", bindDetails(err))
		return
	}
	email, _ := user["email"].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		utils.JSONError(c, logger, http.StatusBadRequest, "email is required", "")
		return
	}
	user["email"] = email

	exist, err := h.Repo.FindOne(c.Request.Context(), bson.M{"email": email})
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to check user", err.Error())
		return
	}
	if exist != nil {
		c.JSON(http.StatusOK, gin.H{"message": "user already exist"})
		return
	}

	if err := h.hashPassword(user); err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}
	user["role"] = "user"

	res, err := h.Repo.Insert(c.Request.Context(), user)
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to create user", err.Error())
		return
	}
	logger.Info("user registered", zap.String("email", email))
	c.JSON(http.StatusOK, res)
}

// GetUserByEmailHandler handles GET /users/:email.
func (h *UserHandler) GetUserByEmailHandler(c *gin.Context) {
	logger := getLogger(c)
	user, err := h.Repo.FindOne(c.Request.Context(), bson.M{"email": c.Param("email")})
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to fetch user", err.Error())
		return
	}
	c.JSON(http.StatusOK, withoutSecrets(user))
}

// GetUserByIDHandler handles GET /users/get/:id.
func (h *UserHandler) GetUserByIDHandler(c *gin.Context) {
	logger := getLogger(c)
	user, err := h.Repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, logger, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, withoutSecrets(user))
}

// ListUsersHandler handles GET /users.
func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	logger := getLogger(c)
	users, err := h.Repo.Find(c.Request.Context(), searchFilter(c))
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to fetch users", err.Error())
		return
	}
	for _, u := range users {
		delete(u, "passwordHash")
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUserHandler handles PATCH /users/:id. A new password is re-hashed;
// the role cannot be changed here.
func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	logger := getLogger(c)
	var fields bson.M
	if err := c.ShouldBindJSON(&fields); err != nil || fields == nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "Invalid request body", bindDetails(err))
		return
	}
	delete(fields, "role")
	if err := h.hashPassword(fields); err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}

	res, err := h.Repo.UpdateByID(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.writeError(c, logger, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, res)
}

// hashPassword replaces a plain "password" field with "passwordHash".
func (h *UserHandler) hashPassword(doc bson.M) error {
	delete(doc, "passwordHash")
	pw, ok := doc["password"].(string)
	delete(doc, "password")
	if !ok || pw == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), h.BcryptCost)
	if err != nil {
		return err
	}
	doc["passwordHash"] = string(hash)
	return nil
}

func withoutSecrets(user bson.M) bson.M {
	if user != nil {
		delete(user, "passwordHash")
	}
	return user
}
