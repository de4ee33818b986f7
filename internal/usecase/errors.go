package usecase

import "fmt"

// TechnicalError: falha de banco ou integração. O handler devolve 500
// com mensagem genérica; o detalhe fica só no log.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

func newTechnicalError(code string, err error) *TechnicalError {
	return &TechnicalError{Code: code, Message: fmt.Sprintf("%s: %v", code, err)}
}
