package reserve

import (
	"errors"

	"github.com/Spok95/erp-core/internal/domain/reservations"
)

// Виды ошибок ядра. Слой маршрутов различает их через errors.Is / errors.As
// и сам выбирает HTTP-статус. Ссылка на чужую организацию всегда даёт
// ErrNotFound, а не ErrForbidden — существование данных чужого тенанта
// не подтверждаем.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state transition")
)

// OverReservationError поднимается из хранилища: сумма активных резервов
// перечитывается там под блокировкой строки потребности, иначе конкурирующая
// вставка проскочила бы проверку на устаревшей сумме.
type OverReservationError = reservations.OverReservationError
