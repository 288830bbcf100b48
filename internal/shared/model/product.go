package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 金额以 JSON number 输出，与前端约定一致
	decimal.MarshalJSONWithoutQuotes = true
}

// Product 商品
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	Category      string          `json:"category" db:"category"`
	ImageURL      string          `json:"image_url" db:"image_url"`
	IsAvailable   bool            `json:"is_available" db:"is_available"`
	IsFeatured    bool            `json:"is_featured" db:"is_featured"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// ProductFilter 商品列表过滤条件
type ProductFilter struct {
	Category     string
	FeaturedOnly bool
}

// ProductInput 创建/更新商品的请求体
//
// 创建时缺省值：description=""、stock_quantity=0、category=""、image_url=""、
// is_available=true、is_featured=false。
type ProductInput struct {
	Name          Optional[string]          `json:"name"`
	Description   Optional[string]          `json:"description"`
	Price         Optional[decimal.Decimal] `json:"price"`
	StockQuantity Optional[int]             `json:"stock_quantity"`
	Category      Optional[string]          `json:"category"`
	ImageURL      Optional[string]          `json:"image_url"`
	IsAvailable   Optional[bool]            `json:"is_available"`
	IsFeatured    Optional[bool]            `json:"is_featured"`
}

// MissingForCreate 返回创建商品时缺失的必填字段
func (in ProductInput) MissingForCreate() []string {
	var missing []string
	if in.Name.Value == "" {
		missing = append(missing, "name")
	}
	if !in.Price.Set {
		missing = append(missing, "price")
	}
	return missing
}

// NewProduct 按缺省规则构造待插入的商品
func (in ProductInput) NewProduct() Product {
	return Product{
		Name:          in.Name.Value,
		Description:   in.Description.Value,
		Price:         in.Price.Value,
		StockQuantity: in.StockQuantity.Value,
		Category:      in.Category.Value,
		ImageURL:      in.ImageURL.Value,
		IsAvailable:   in.IsAvailable.Or(true),
		IsFeatured:    in.IsFeatured.Or(false),
	}
}

// Apply 将部分更新合并到 p 上
//
// name/category 为空字符串时沿用原值；description/image_url 允许显式清空；
// 数值与布尔字段只看是否提供。
func (in ProductInput) Apply(p Product) Product {
	p.Name = in.Name.OrNonZero(p.Name)
	p.Description = in.Description.Or(p.Description)
	if in.Price.Set {
		p.Price = in.Price.Value
	}
	p.StockQuantity = in.StockQuantity.Or(p.StockQuantity)
	p.Category = in.Category.OrNonZero(p.Category)
	p.ImageURL = in.ImageURL.Or(p.ImageURL)
	p.IsAvailable = in.IsAvailable.Or(p.IsAvailable)
	p.IsFeatured = in.IsFeatured.Or(p.IsFeatured)
	return p
}

// ProductFlag 可切换的商品布尔字段
type ProductFlag string

const (
	ProductFlagAvailable ProductFlag = "is_available"
	ProductFlagFeatured  ProductFlag = "is_featured"
)
