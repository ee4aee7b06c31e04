package model

// Category classifies a product by restock batch size. It is fixed at creation.
type Category string

const (
	CategoryHighVolume Category = "high_volume"
	CategoryLowVolume  Category = "low_volume"

	// HighVolumeRestockAbove is the batch size a product must exceed to be high volume.
	HighVolumeRestockAbove = 50
)

func CategoryFor(restockQuantity int) Category {
	if restockQuantity > HighVolumeRestockAbove {
		return CategoryHighVolume
	}
	return CategoryLowVolume
}

func (c Category) Valid() bool {
	return c == CategoryHighVolume || c == CategoryLowVolume
}
