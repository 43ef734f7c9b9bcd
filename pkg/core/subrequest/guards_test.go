package subrequest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

func request(status model.RequestStatus) model.SubstituteRequest {
	return model.SubstituteRequest{
		ID:                "req-1",
		ShiftID:           "shift-1",
		ShiftRecurrenceID: "rec-1",
		Date:              "2025-06-03",
		Type:              model.RequestSubstitute,
		Status:            status,
		RequestedByUserID: "requester",
	}
}

func tradeRequest(status model.RequestStatus) model.SubstituteRequest {
	req := request(status)
	req.Type = model.RequestTrade
	return req
}

func TestCanVolunteer(t *testing.T) {
	assert.NoError(t, CanVolunteer(request(model.StatusOpen), "worker"))
	assert.ErrorIs(t, CanVolunteer(request(model.StatusOpen), "requester"), ErrForbidden)
	assert.ErrorIs(t, CanVolunteer(request(model.StatusAccepted), "worker"), ErrRequestNotOpen)
	assert.ErrorIs(t, CanVolunteer(request(model.StatusAwaitingRequestConf), "worker"), ErrRequestNotOpen)
}

func TestCanAcceptVolunteer(t *testing.T) {
	assert.NoError(t, CanAcceptVolunteer(request(model.StatusAwaitingRequestConf), "requester"))
	assert.ErrorIs(t, CanAcceptVolunteer(request(model.StatusAwaitingRequestConf), "worker"), ErrForbidden)
	assert.ErrorIs(t, CanAcceptVolunteer(request(model.StatusOpen), "requester"), ErrNotAwaitingVolunteer)
}

func TestCanWithdrawVolunteer(t *testing.T) {
	assert.NoError(t, CanWithdrawVolunteer(request(model.StatusAwaitingRequestConf)))
	assert.ErrorIs(t, CanWithdrawVolunteer(request(model.StatusOpen)), ErrNotAwaitingVolunteer)
}

func TestCanNominate(t *testing.T) {
	assert.NoError(t, CanNominate(request(model.StatusOpen), "requester"))
	assert.ErrorIs(t, CanNominate(request(model.StatusOpen), "worker"), ErrForbidden)
	assert.ErrorIs(t, CanNominate(request(model.StatusCancelled), "requester"), ErrRequestNotOpen)
}

func TestCanRespondToNomination(t *testing.T) {
	nominee := "nominee"
	req := request(model.StatusAwaitingNominationConf)
	req.NominatedSubUserID = &nominee
	req.HasNominatedSub = true

	assert.NoError(t, CanRespondToNomination(req, "nominee"))
	assert.ErrorIs(t, CanRespondToNomination(req, "someone-else"), ErrForbidden)
	assert.ErrorIs(t, CanRespondToNomination(request(model.StatusOpen), "nominee"), ErrNotAwaitingNomination)
}

func TestCanWithdrawAccepted(t *testing.T) {
	sub := "sub"
	req := request(model.StatusAccepted)
	req.AcceptedByUserID = &sub

	assert.NoError(t, CanWithdrawAccepted(req, "sub"))
	assert.ErrorIs(t, CanWithdrawAccepted(req, "requester"), ErrForbidden)
	assert.ErrorIs(t, CanWithdrawAccepted(request(model.StatusOpen), "sub"), ErrNotAccepted)
}

func TestCanReopen(t *testing.T) {
	assert.NoError(t, CanReopen(request(model.StatusCancelled), "requester"))
	assert.NoError(t, CanReopen(request(model.StatusExpired), "requester"))
	assert.ErrorIs(t, CanReopen(request(model.StatusCancelled), "worker"), ErrForbidden)

	for _, status := range []model.RequestStatus{
		model.StatusOpen,
		model.StatusAccepted,
		model.StatusAwaitingRequestConf,
		model.StatusAwaitingNominationConf,
	} {
		assert.ErrorIs(t, CanReopen(request(status), "requester"), ErrNotReopenable, "status %s", status)
	}
}

func TestCanCancel(t *testing.T) {
	assert.NoError(t, CanCancel(request(model.StatusOpen), "requester"))
	assert.NoError(t, CanCancel(request(model.StatusAwaitingRequestConf), "requester"))
	assert.NoError(t, CanCancel(request(model.StatusAwaitingNominationConf), "requester"))
	assert.ErrorIs(t, CanCancel(request(model.StatusOpen), "worker"), ErrForbidden)
	assert.ErrorIs(t, CanCancel(request(model.StatusAccepted), "requester"), ErrNotCancellable)
	assert.ErrorIs(t, CanCancel(request(model.StatusCancelled), "requester"), ErrNotCancellable)
}

func TestCanOfferTrade(t *testing.T) {
	assert.NoError(t, CanOfferTrade(tradeRequest(model.StatusOpen), "worker"))
	assert.ErrorIs(t, CanOfferTrade(request(model.StatusOpen), "worker"), ErrNotTrade)
	assert.ErrorIs(t, CanOfferTrade(tradeRequest(model.StatusOpen), "requester"), ErrForbidden)
	assert.ErrorIs(t, CanOfferTrade(tradeRequest(model.StatusAccepted), "worker"), ErrRequestNotOpen)
}

func TestCanSelectTradeOption(t *testing.T) {
	assert.NoError(t, CanSelectTradeOption(tradeRequest(model.StatusOpen), "requester"))
	assert.ErrorIs(t, CanSelectTradeOption(tradeRequest(model.StatusOpen), "worker"), ErrForbidden)
	assert.ErrorIs(t, CanSelectTradeOption(request(model.StatusOpen), "requester"), ErrNotTrade)
	assert.ErrorIs(t, CanSelectTradeOption(tradeRequest(model.StatusCancelled), "requester"), ErrRequestNotOpen)
}

func TestAcceptanceInvariantThroughTransitions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	req := request(model.StatusOpen)
	require.NoError(t, CheckInvariant(req))

	req = Accept(req, "sub", now)
	require.NoError(t, CheckInvariant(req))
	assert.Equal(t, model.StatusAccepted, req.Status)
	require.NotNil(t, req.AcceptedByUserID)
	assert.Equal(t, "sub", *req.AcceptedByUserID)
	assert.Equal(t, now, *req.AcceptedAt)

	req = ClearAcceptance(req, now.Add(time.Hour))
	require.NoError(t, CheckInvariant(req))
	assert.Equal(t, model.StatusOpen, req.Status)
	assert.Nil(t, req.AcceptedByUserID)
	assert.Nil(t, req.AcceptedAt)
}

func TestReopenClearsAllResolutionFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	nominee := "nominee"

	req := request(model.StatusCancelled)
	req.NominatedSubUserID = &nominee
	req.HasNominatedSub = true
	req.NominatedConfirmedAt = &now

	req = Reopen(req, now.Add(time.Hour))
	require.NoError(t, CheckInvariant(req))
	assert.Equal(t, model.StatusOpen, req.Status)
	assert.Nil(t, req.NominatedSubUserID)
	assert.False(t, req.HasNominatedSub)
	assert.Nil(t, req.NominatedConfirmedAt)
	assert.Nil(t, req.AcceptedByUserID)
}

func TestCheckInvariant_Violations(t *testing.T) {
	sub := "sub"

	req := request(model.StatusAccepted) // accepted without acceptedBy
	assert.Error(t, CheckInvariant(req))

	req = request(model.StatusOpen)
	req.AcceptedByUserID = &sub // acceptedBy without accepted status
	assert.Error(t, CheckInvariant(req))
}
