package repository

// ImageRepository определяет методы для работы с метаданными изображений
type ImageRepository interface {
	// FilterExisting возвращает подмножество переданных id, которые реально
	// существуют в таблице images. Используется ассемблером: неизвестные
	// ссылки на изображения деградируют до "без изображения".
	FilterExisting(ids []uint) (map[uint]bool, error)
}
