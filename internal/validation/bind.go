package validation

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BindJSON decodes the request body into out. An empty body decodes as an
// empty object so that field validation reports what is missing. On a
// malformed body it writes a 400 response and returns an error for the
// handler to short-circuit.
func BindJSON(c *gin.Context, out interface{}) error {
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": MsgInvalidRequestBody})
		return err
	}
	return nil
}
