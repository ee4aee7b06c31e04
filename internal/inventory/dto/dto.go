package dto

import "github.com/fekuna/omnipos-restock-service/internal/model"

type ProductFilters struct {
	Status model.Status // empty means every status
}
