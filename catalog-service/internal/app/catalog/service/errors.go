package service

import "errors"

var (
	// ErrValidation - некорректный ввод, побочных эффектов не было
	ErrValidation = errors.New("validation error")
	// ErrCategoryCreation - категорию создать не удалось, товары не тронуты
	ErrCategoryCreation = errors.New("category creation failed")
	// ErrInvariantViolation - хранилище вернуло структурно невозможные данные
	ErrInvariantViolation = errors.New("category created without identifier")

	ErrProductNotFound = errors.New("product not found")
)
