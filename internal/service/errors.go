package service

import (
	"errors"
	"net/mail"
)

var (
	ErrValidation     = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrOrderInFlight  = errors.New("order already in flight for this cart")
	ErrUnknownItem    = errors.New("unknown menu item")
	ErrChargeFailed   = errors.New("charge failed")
	ErrDispatchFailed = errors.New("receipt dispatch failed")
)

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
