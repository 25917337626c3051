package server

import (
	"errors"
	"net/http"
	"strings"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// Client commands
const (
	CmdSubscribe   = "subscribe"
	CmdSearch      = "search"
	CmdClearSearch = "clear_search"
	CmdType        = "type"
	CmdSort        = "sort"
	CmdCurrency    = "currency"
	CmdRefresh     = "refresh"
)

// -----------------------------------------------------------------------------

// parseSort validates a sort field and optional order
func parseSort(field, order string) (models.MSortField, models.MSortOrder, error) {
	var f models.MSortField
	switch models.MSortField(strings.ToLower(field)) {
	case models.SortByName:
		f = models.SortByName
	case models.SortByPrice:
		f = models.SortByPrice
	case models.SortByChange:
		f = models.SortByChange
	case models.SortByVolume:
		f = models.SortByVolume
	default:
		return "", "", helpers.InvalidArgument("unknown sort field %q", field)
	}

	switch models.MSortOrder(strings.ToLower(order)) {
	case "":
		return f, "", nil
	case models.SortAsc:
		return f, models.SortAsc, nil
	case models.SortDesc:
		return f, models.SortDesc, nil
	default:
		return "", "", helpers.InvalidArgument("unknown sort order %q", order)
	}
}

func invalidCurrency(code string) error {
	return helpers.InvalidArgument("invalid secondary currency code %q", code)
}

func unknownCommand(cmd string) error {
	return helpers.InvalidArgument("unknown command %q", cmd)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// -----------------------------------------------------------------------------

// respondError maps err to a status: invalid arguments are 400, classified
// upstream failures 502, anything else 500
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	var apiErr *helpers.ApiError
	switch {
	case errors.Is(err, helpers.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		body["code"] = apiErr.Code
	}
	c.JSON(status, body)
}

func apiErrorBody(err *helpers.ApiError) gin.H {
	if err == nil {
		return nil
	}
	return gin.H{
		"message":   err.Message,
		"code":      err.Code,
		"status":    err.Status,
		"timestamp": err.Timestamp,
	}
}
