package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	FullName string  `json:"full_name"`
	Amount   float64 `json:"amount"`
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		expected    bindTarget
		expectError bool
	}{
		{
			name:     "Nested Structure",
			key:      "patient",
			body:     `{"patient": {"full_name": "Ana López", "amount": 150}}`,
			expected: bindTarget{FullName: "Ana López", Amount: 150},
		},
		{
			name:     "Flat Structure",
			key:      "patient",
			body:     `{"full_name": "Carlos Mejía", "amount": 75.5}`,
			expected: bindTarget{FullName: "Carlos Mejía", Amount: 75.5},
		},
		{
			name:     "Missing Key Falls Back To Flat",
			key:      "payment",
			body:     `{"other": "value", "full_name": "María", "amount": 40}`,
			expected: bindTarget{FullName: "María", Amount: 40},
		},
		{
			name:        "Invalid Field Type",
			key:         "payment",
			body:        `{"payment": {"full_name": "Luis", "amount": "mucho"}}`,
			expectError: true,
		},
		{
			name:        "Nested Key With Non-Object Value",
			key:         "payment",
			body:        `{"payment": "some string"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result bindTarget
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
