// Package gatewaytest provides an in-memory gateway.Service double for
// engine and resolver tests.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/talentops/onboard/gateway"
)

// Mock implements gateway.Service with call counting and error injection.
// The zero value is usable; correlation ids default to deterministic values.
type Mock struct {
	mu sync.Mutex

	SigningCalls  int
	AccountCalls  int
	TrainingCalls int

	SigningErr  error
	AccountErr  error
	TrainingErr error

	SubmissionID string
	UserID       string
	EnrollmentID string
}

var _ gateway.Service = (*Mock)(nil)

func (m *Mock) CreateSigningRequest(_ context.Context, request *gateway.SigningRequest) (*gateway.SigningResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SigningCalls++
	if m.SigningErr != nil {
		return nil, m.SigningErr
	}
	id := m.SubmissionID
	if id == "" {
		id = fmt.Sprintf("sub-%03d", m.SigningCalls)
	}
	return &gateway.SigningResponse{
		SubmissionID: id,
		DownloadURL:  "https://documents.example.com/" + id + ".pdf",
	}, nil
}

func (m *Mock) ProvisionAccount(_ context.Context, request *gateway.AccountRequest) (*gateway.AccountResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AccountCalls++
	if m.AccountErr != nil {
		return nil, m.AccountErr
	}
	id := m.UserID
	if id == "" {
		id = fmt.Sprintf("user-%03d", m.AccountCalls)
	}
	return &gateway.AccountResponse{UserID: id}, nil
}

func (m *Mock) EnrollInTraining(_ context.Context, request *gateway.TrainingRequest) (*gateway.TrainingResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrainingCalls++
	if m.TrainingErr != nil {
		return nil, m.TrainingErr
	}
	id := m.EnrollmentID
	if id == "" {
		id = fmt.Sprintf("enroll-%03d", m.TrainingCalls)
	}
	return &gateway.TrainingResponse{EnrollmentID: id}, nil
}

// Calls returns the total number of gateway invocations.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SigningCalls + m.AccountCalls + m.TrainingCalls
}
