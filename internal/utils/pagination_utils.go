package utils

import (
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/badili/odk-dashboard3/internal/schemas"
)

// ParsePaginationParams extracts the 'offset' and 'limit' parameters from the
// request's query parameters. It provides default values and ensures that the
// returned values are non-negative.
func ParsePaginationParams(c *gin.Context) (int, int) {
	offset, err := strconv.Atoi(c.DefaultQuery(OffsetParamKey, "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	limit, err := strconv.Atoi(c.DefaultQuery(LimitParamKey, "10"))
	if err != nil || limit < 0 {
		limit = 10
	}

	return offset, limit
}

// SendPaginatedResponse sends a paginated HTTP response with the subset of
// records determined by the offset and limit.
func SendPaginatedResponse(c *gin.Context, records interface{}, offset, limit, totalRecords int) {
	v := reflect.ValueOf(records)

	if offset > v.Len() {
		offset = v.Len()
	}

	end := offset + limit
	if end > v.Len() {
		end = v.Len()
	}

	var subset interface{}
	if v.Len() > 0 {
		subset = v.Slice(offset, end).Interface()
	} else {
		subset = records
	}

	paginatedResponse := schemas.PaginatedResponse{
		Records: subset,
		Pagination: schemas.Pagination{
			Offset:  offset,
			Limit:   limit,
			Records: totalRecords,
		},
	}

	WriteAndLogResponse(c, paginatedResponse, 200)
}
