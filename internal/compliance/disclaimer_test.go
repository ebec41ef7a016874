package compliance

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisclaimerService_AddDisclaimer(t *testing.T) {
	svc := NewDisclaimerService(nil, DefaultDisclaimerConfig())

	out, err := svc.AddDisclaimer(context.Background(), "Your results are ready.  ", DisclaimerOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Your results are ready.\n\n"))
	assert.True(t, strings.HasSuffix(out, disclaimerMediumText))

	again, err := svc.AddDisclaimer(context.Background(), out, DisclaimerOptions{})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestDisclaimerService_Levels(t *testing.T) {
	assert.Equal(t, disclaimerShortText, NewDisclaimerService(nil, DisclaimerConfig{Level: DisclaimerShort}).GetDisclaimerText())
	assert.Equal(t, disclaimerFullText, NewDisclaimerService(nil, DisclaimerConfig{Level: DisclaimerFull}).GetDisclaimerText())
	assert.Equal(t, "custom", NewDisclaimerService(nil, DisclaimerConfig{CustomText: "custom"}).GetDisclaimerText())
}

func TestDisclaimerService_DisabledAndNil(t *testing.T) {
	out, err := NewDisclaimerService(nil, DisclaimerConfig{}).AddDisclaimer(context.Background(), "hi", DisclaimerOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	var nilSvc *DisclaimerService
	out, err = nilSvc.AddDisclaimer(context.Background(), "hi", DisclaimerOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestDisclaimerService_AuditsWhenSessionKnown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO compliance_audit_events").WillReturnResult(sqlmock.NewResult(1, 1))
	svc := NewDisclaimerService(NewAuditService(db), DefaultDisclaimerConfig())

	_, err = svc.AddDisclaimer(context.Background(), "report", DisclaimerOptions{SessionID: "sess-1", PatientID: "p-1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
