package handler

import (
	"github.com/dtroode/userauth/internal/api/apierror"
)

func handleError(err error) error {
	return apierror.From(err).GRPCStatus().Err()
}
