package response

import "github.com/gin-gonic/gin"

// ErrorBody is the single error shape every endpoint returns. StatusCode
// always matches the HTTP status line, so clients can read either.
type ErrorBody struct {
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail"`
}

func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"status": 200}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(200, body)
}

func Fail(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorBody{
		StatusCode: status,
		Detail:     detail,
	})
}
