package handlers

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// bind reads a mutation body. HTML forms bind through their form tags; JSON
// bodies may wrap the fields under key ({"client": {...}}) or send them flat.
func bind(c *gin.Context, key string, obj any) error {
	if c.ContentType() == binding.MIMEJSON {
		return BindNestedOrFlat(c, key, obj)
	}
	return c.ShouldBindWith(obj, binding.Form)
}

// BindNestedOrFlat decodes a JSON body into obj, unwrapping it first when the
// body is an object carrying key.
func BindNestedOrFlat(c *gin.Context, key string, obj any) error {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(body, &nested); err == nil {
		if val, ok := nested[key]; ok {
			return json.Unmarshal(val, obj)
		}
	}
	return json.Unmarshal(body, obj)
}
