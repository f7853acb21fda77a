package categories

type Category struct {
	ID   int64
	Name string
}
