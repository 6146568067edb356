package httpserver

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "taskManagementAPI/internal/errors"
	"taskManagementAPI/repository"
)

// listResponse is the envelope of every list endpoint.
type listResponse[T any] struct {
	Total int `json:"total"`
	Data  []T `json:"data"`
}

// writeError renders err as {"message": ...}. Routes that report missing
// entities as 400 pass notFound = http.StatusBadRequest.
func writeError(c *gin.Context, err error, notFound int) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	if code == apperrors.CodeNotFound && notFound != 0 {
		status = notFound
	}
	if code == apperrors.CodeUnknown {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperrors.MessageOf(err)})
}

// bindJSON decodes the body into dst and turns binding failures into
// validation errors.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeField(fe))
		}
		return apperrors.Wrap(apperrors.CodeValidation, strings.Join(msgs, "; "), err)
	}
	return apperrors.Wrap(apperrors.CodeValidation, "malformed request body", err)
}

func describeField(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// pathID parses a positive integer path parameter. Anything else is treated
// as an entity that does not exist.
func pathID(c *gin.Context, name string, missing error) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, missing
	}
	return id, nil
}

// pageFromQuery reads the optional page and limit query parameters.
func pageFromQuery(c *gin.Context) (repository.Page, error) {
	var p repository.Page
	pageStr, hasPage := c.GetQuery("page")
	limitStr, hasLimit := c.GetQuery("limit")
	if hasPage {
		n, err := strconv.Atoi(pageStr)
		if err != nil {
			return p, apperrors.New(apperrors.CodeValidation, "page must be an integer")
		}
		p.Page = max(n, 1)
	}
	if hasLimit {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			return p, apperrors.New(apperrors.CodeValidation, "limit must be a positive integer")
		}
		p.Limit = n
	}
	if !hasPage || !hasLimit {
		return repository.Page{}, nil
	}
	return p, nil
}
