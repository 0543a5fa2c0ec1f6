package mongo

import (
	"errors"
	"fmt"
	"testing"

	apperrors "lodging/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassifyTransactionError(t *testing.T) {
	writeConflict := mongo.CommandError{
		Code:    112,
		Name:    "WriteConflict",
		Message: "Write conflict during plan execution",
		Labels:  []string{transientTransactionLabel},
	}
	notFound := errors.New("accommodation not found")

	tests := []struct {
		name          string
		err           error
		wantTransient bool
		wantIs        error
	}{
		{name: "write conflict", err: writeConflict, wantTransient: true},
		{name: "wrapped write conflict", err: fmt.Errorf("apply deltas: %w", writeConflict), wantTransient: true},
		{name: "unlabelled command error", err: mongo.CommandError{Code: 2, Name: "BadValue"}},
		{name: "domain error keeps identity", err: notFound, wantIs: notFound},
		{name: "commit outcome unknown is not transient", err: mongo.CommandError{Labels: []string{unknownCommitResultLabel}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTransactionError(tt.err)
			if errors.Is(got, ErrTransientTransaction) != tt.wantTransient {
				t.Errorf("classifyTransactionError(%v) = %v, transient want %v", tt.err, got, tt.wantTransient)
			}
			if tt.wantIs != nil && !errors.Is(got, tt.wantIs) {
				t.Errorf("classifyTransactionError(%v) lost the cause: %v", tt.err, got)
			}
			var cmdErr mongo.CommandError
			if tt.wantTransient && (!errors.As(got, &cmdErr) || cmdErr.Name != "WriteConflict") {
				t.Errorf("classifyTransactionError(%v) lost the server error: %v", tt.err, got)
			}
		})
	}
}

func TestClassifyTransactionError_PassesAppErrorsThrough(t *testing.T) {
	appErr := apperrors.Conflict("Accommodation still has bookings")

	got := classifyTransactionError(appErr)
	if got != error(appErr) {
		t.Errorf("classifyTransactionError() = %v, want the AppError unchanged", got)
	}
}

func TestHasErrorLabel(t *testing.T) {
	err := fmt.Errorf("commit: %w", mongo.CommandError{Labels: []string{unknownCommitResultLabel}})

	if !hasErrorLabel(err, unknownCommitResultLabel) {
		t.Error("expected the wrapped label to be found")
	}
	if hasErrorLabel(err, transientTransactionLabel) {
		t.Error("unexpected label match")
	}
	if hasErrorLabel(errors.New("plain"), transientTransactionLabel) {
		t.Error("plain errors carry no labels")
	}
}
