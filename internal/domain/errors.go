package domain

import "errors"

var (
	// ErrNotificationNotFound уведомление не найдено или принадлежит другому пользователю.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrMonitorNotFound монитор не найден.
	ErrMonitorNotFound = errors.New("monitor not found")
	// ErrUnsupportedType для типа уведомления не зарегистрирован провайдер.
	ErrUnsupportedType = errors.New("notification type is not supported")
	// ErrProviderWithoutName провайдер без имени.
	ErrProviderWithoutName = errors.New("notification provider without name")
	// ErrDuplicateProvider провайдер с таким именем уже зарегистрирован.
	ErrDuplicateProvider = errors.New("duplicate notification provider name")
	// ErrEmptyName пустое имя уведомления.
	ErrEmptyName = errors.New("notification name is empty")
	// ErrEmptyType пустой тип уведомления.
	ErrEmptyType = errors.New("notification type is empty")
)

// ProviderError ошибка внешнего сервиса при отправке уведомления.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// MissingFieldError в конфигурации уведомления нет обязательного поля.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field " + e.Field
}
