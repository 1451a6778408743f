package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	c, err := NewContact(Visitor{FullName: " Jane Doe ", Email: "Jane@Example.com"}, "Quote", " Need a 100 kVA set ")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.FullName)
	assert.Equal(t, "jane@example.com", c.Email)
	assert.Equal(t, "Need a 100 kVA set", c.Message)
	assert.Equal(t, InquiryNew, c.Status)

	_, err = NewContact(Visitor{Email: "a@b.co"}, "", "hi")
	assert.ErrorIs(t, err, ErrFullNameRequired)
	_, err = NewContact(Visitor{FullName: "A", Email: "a@b.co"}, "", " ")
	assert.ErrorIs(t, err, ErrMessageRequired)
}

func TestNewInfoRequest(t *testing.T) {
	r, err := NewInfoRequest("prd_1", Visitor{FullName: "A", Email: "a@b.co"}, "Price?")
	require.NoError(t, err)
	require.NotNil(t, r.ProductID)
	assert.Equal(t, "prd_1", *r.ProductID)

	r, err = NewInfoRequest("", Visitor{FullName: "A", Email: "a@b.co"}, "Price?")
	require.NoError(t, err)
	assert.Nil(t, r.ProductID)
}

func TestNewReply(t *testing.T) {
	r, err := NewReply(TargetContact, "ctc_1", "a@b.co", "Re: Quote", "Thanks")
	require.NoError(t, err)
	assert.Equal(t, ReplyPending, r.Status)
	assert.Zero(t, r.Attempts)

	_, err = NewReply("sms", "ctc_1", "a@b.co", "s", "b")
	assert.ErrorIs(t, err, ErrTargetInvalid)
	_, err = NewReply(TargetContact, "ctc_1", "a@b.co", "", "b")
	assert.ErrorIs(t, err, ErrSubjectRequired)
	_, err = NewReply(TargetContact, "ctc_1", "a@b.co", "s", " ")
	assert.ErrorIs(t, err, ErrBodyRequired)
}

func TestReply_DeliveryStates(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r, err := NewReply(TargetInfoRequest, "inq_1", "a@b.co", "s", "b")
	require.NoError(t, err)

	r.MarkFailed(errors.New("connection refused"), 3, now)
	assert.Equal(t, ReplyPending, r.Status)
	assert.Equal(t, 1, r.Attempts)
	assert.Equal(t, "connection refused", r.LastError)

	r.MarkFailed(errors.New("timeout"), 3, now)
	r.MarkFailed(errors.New("timeout"), 3, now)
	assert.Equal(t, ReplyFailed, r.Status)
	assert.Equal(t, 3, r.Attempts)

	require.NoError(t, r.Retry(now))
	assert.Equal(t, ReplyPending, r.Status)
	assert.Zero(t, r.Attempts)
	assert.ErrorIs(t, r.Retry(now), ErrReplyNotFailed)

	r.MarkSent(now)
	assert.Equal(t, ReplySent, r.Status)
	assert.Empty(t, r.LastError)
	require.NotNil(t, r.SentAt)
	assert.Equal(t, now, *r.SentAt)
}
