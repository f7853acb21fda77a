package materials

type Material struct {
	ID          int64
	Name        string
	Unit        string
	Quantity    int64
	MinQuantity int64
	CategoryID  *int64
}

// Row — строка списка материалов: имя категории уже подтянуто
// (пустая строка, если категории нет).
type Row struct {
	ID           int64
	Name         string
	Unit         string
	Quantity     int64
	MinQuantity  int64
	CategoryName string
}
