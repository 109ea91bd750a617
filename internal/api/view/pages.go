package view

import "github.com/modernforum/forum/internal/core/domain"

type IndexPage struct {
	Title    string
	Threads  []domain.ThreadSummary
	ErrorMsg string
}

type ThreadPage struct {
	Thread *domain.ThreadDetail
}

// FormPage backs the login, register and new thread forms. Values echoes
// the submitted fields back, Next is only used by login.
type FormPage struct {
	Title  string
	Errors []domain.FieldError
	Values map[string]string
	Next   string
}
