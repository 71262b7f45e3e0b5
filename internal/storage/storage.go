package storage

import "tradeGuard/internal/model"

// Storage receives the outcome of every evaluated trade request.
type Storage interface {
	PutDecisionBatch(decisions []model.Decision) error
	PutRejection(rejection model.Rejection) error
	Close() error
}
