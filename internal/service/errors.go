package service

import (
	"errors"

	"trendhive/internal/model"
)

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
