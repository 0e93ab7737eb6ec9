package domain

import "errors"

var ErrInvalidAccount = errors.New("invalid account details")
var ErrInvalidAmount = errors.New("cash amount must be positive")
var ErrSameAccount = errors.New("source and destination accounts must be different")
var ErrSourceAccountNotFound = errors.New("source account not found")
var ErrDestinationAccountNotFound = errors.New("destination account not found")
var ErrInsufficientFunds = errors.New("insufficient funds in source account")
var ErrTransferFailed = errors.New("an error occurred while processing the transaction")
