package templates

import "github.com/labstack/echo/v4"

// Handlers is the HTTP surface of template management.
type Handlers interface {
	Create() echo.HandlerFunc
	List() echo.HandlerFunc
	GetByID() echo.HandlerFunc
	Update() echo.HandlerFunc
	Delete() echo.HandlerFunc
	Clone() echo.HandlerFunc
}
