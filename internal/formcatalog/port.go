package formcatalog

import (
	"safety-forms-api/internal/formengine"
	"safety-forms-api/internal/logs"
)

type FormCatalogServiceAPI interface {
	FetchMany(filter FormFilter) ([]*formengine.Form, int64, error)
	FetchOne(id string) (*formengine.Form, error)
	Create(form *formengine.Form, userID uint) (*formengine.Form, error)
	Update(id string, patch FormPatch) (*formengine.Form, error)
	Duplicate(id, newName string, userID uint) (*formengine.Form, error)
	Delete(id string) error
	ValidateResponses(id string, responses formengine.Responses) (formengine.Errors, error)
}

type LogServicePort interface {
	Log(log logs.SystemLog, payload interface{}) error
}
