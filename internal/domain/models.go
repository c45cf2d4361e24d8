package domain

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"-"`
}

type Color struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Hex  string `db:"hex" json:"hex"` // #rrggbb
}

// Garment is a purchasable stock-keeping variant: category x color x size.
type Garment struct {
	ID         string `db:"id" json:"id"`
	CategoryID string `db:"category_id" json:"category_id"`
	ColorID    string `db:"color_id" json:"color_id"`
	Size       string `db:"size" json:"size"` // XS..XXL
	Count      int    `db:"count" json:"count"`
	Price      int    `db:"price" json:"price"`
}

type Product struct {
	ID          string `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Price       int    `db:"price" json:"price"`
	Embroidery  bool   `db:"embroidery" json:"embroidery"`
	Active      bool   `db:"active" json:"-"`
	CreatedAt   string `db:"created_at" json:"-"`
}

var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

func ValidSize(s string) bool {
	for _, v := range Sizes {
		if v == s {
			return true
		}
	}
	return false
}
