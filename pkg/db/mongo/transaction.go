package mongo

import (
	"context"
	"errors"
	"fmt"

	apperrors "lodging/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	transientTransactionLabel = "TransientTransactionError"
	unknownCommitResultLabel  = "UnknownTransactionCommitResult"

	maxCommitAttempts = 3
)

// ErrTransientTransaction marks a transaction the server aborted because it
// collided with a concurrent one, typically a WriteConflict. The transaction
// is not retried here; callers decide how often to run it again.
var ErrTransientTransaction = errors.New("transient transaction conflict")

// TransactionFunc runs inside a session transaction. The ctx it receives is
// the session context, so repository calls made with it join the transaction.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction runs fn once in a snapshot transaction. Unlike
// session.WithTransaction it never re-runs fn: a transient abort comes back
// as ErrTransientTransaction. Only a commit with an unknown outcome is
// retried, up to maxCommitAttempts.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	if err := session.StartTransaction(txnOpts); err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	sessCtx := mongo.NewSessionContext(ctx, session)

	if err := fn(sessCtx); err != nil {
		_ = session.AbortTransaction(context.WithoutCancel(ctx))
		return classifyTransactionError(err)
	}

	if err := commitTransaction(sessCtx, session); err != nil {
		_ = session.AbortTransaction(context.WithoutCancel(ctx))
		return classifyTransactionError(err)
	}
	return nil
}

func commitTransaction(ctx context.Context, session mongo.Session) error {
	for attempt := 1; ; attempt++ {
		err := session.CommitTransaction(ctx)
		if err == nil || attempt >= maxCommitAttempts || ctx.Err() != nil ||
			!hasErrorLabel(err, unknownCommitResultLabel) {
			return err
		}
	}
}

func classifyTransactionError(err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case hasErrorLabel(err, transientTransactionLabel):
		return fmt.Errorf("%w: %w", ErrTransientTransaction, err)
	}
	return fmt.Errorf("transaction failed: %w", err)
}

func hasErrorLabel(err error, label string) bool {
	var labeled mongo.LabeledError
	return errors.As(err, &labeled) && labeled.HasErrorLabel(label)
}

// IsInTransaction reports whether ctx is a session context created by
// ExecuteTransaction.
func IsInTransaction(ctx context.Context) bool {
	_, ok := ctx.(mongo.SessionContext)
	return ok
}
