package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicName(t *testing.T) {
	u := &User{Email: "grace@example.com", DisplayName: "Grace"}
	assert.Equal(t, "Grace", u.PublicName())

	u = &User{Email: "grace@example.com"}
	assert.Equal(t, "grace", u.PublicName())

	u = &User{Email: "not-an-email"}
	assert.Equal(t, "not-an-email", u.PublicName())
}

func TestOptionText(t *testing.T) {
	q := QuizQuestion{OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d"}

	assert.Equal(t, "b", q.OptionText("B"))
	assert.Equal(t, "d", q.OptionText("D"))
	assert.Equal(t, "", q.OptionText("E"))
	assert.Equal(t, "", q.OptionText(""))
}
