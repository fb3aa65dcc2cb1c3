package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type category struct {
	id        string
	name      string
	nameAlt   string
	sortOrder int
}

type product struct {
	id         string
	categoryID string
	name       string
	nameAlt    string
	price      int64
	typ        string
}

type modifier struct {
	id       string
	name     string
	nameAlt  string
	price    int64
	category string
}

var categories = []category{
	{"congee", "粥品", "Congee", 0},
	{"side", "小菜", "Side Dishes", 1},
	{"drink", "飲料", "Drinks", 2},
}

var products = []product{
	{"congee-century-egg", "congee", "皮蛋瘦肉粥", "Century Egg & Pork Congee", 90, "signature"},
	{"congee-fish", "congee", "魚片粥", "Sliced Fish Congee", 110, "signature"},
	{"congee-chicken", "congee", "雞絲粥", "Shredded Chicken Congee", 85, ""},
	{"congee-plain", "congee", "白粥", "Plain Congee", 40, ""},
	{"side-youtiao", "side", "油條", "Fried Dough Stick", 25, ""},
	{"side-pickles", "side", "醬菜", "Pickled Vegetables", 30, ""},
	{"side-tofu", "side", "滷豆腐", "Braised Tofu", 35, ""},
	{"drink-soymilk", "drink", "豆漿", "Soy Milk", 30, ""},
	{"drink-tea", "drink", "古早味紅茶", "Black Tea", 25, ""},
}

var modifiers = []modifier{
	{"size-large", "大碗", "Large", 25, "option"},
	{"less-salt", "少鹽", "Less Salt", 0, "option"},
	{"no-scallion", "不加蔥", "No Scallion", 0, "option"},
	{"addon-egg", "加蛋", "Extra Egg", 20, "addon"},
	{"addon-pork", "加肉", "Extra Pork", 30, "addon"},
	{"addon-century-egg", "加皮蛋", "Extra Century Egg", 15, "addon"},
	{"addon-youtiao", "加油條", "Extra Dough Stick", 15, "addon"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedCategories(db)
	seedProducts(db)
	seedModifiers(db)

	log.Println("Seeding completed successfully!")
}

func seedCategories(db *sql.DB) {
	for _, c := range categories {
		_, err := db.Exec(`
			INSERT INTO categories (id, name, name_alt, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, name_alt = EXCLUDED.name_alt, sort_order = EXCLUDED.sort_order`,
			c.id, c.name, c.nameAlt, c.sortOrder)
		if err != nil {
			log.Fatalf("Failed to seed category %s: %v", c.id, err)
		}
	}
	log.Printf("Seeded %d categories", len(categories))
}

func seedProducts(db *sql.DB) {
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (id, category_id, name, name_alt, price, type)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET category_id = EXCLUDED.category_id, name = EXCLUDED.name, name_alt = EXCLUDED.name_alt, price = EXCLUDED.price, type = EXCLUDED.type`,
			p.id, p.categoryID, p.name, p.nameAlt, p.price, p.typ)
		if err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.id, err)
		}
	}
	log.Printf("Seeded %d products", len(products))
}

func seedModifiers(db *sql.DB) {
	for _, m := range modifiers {
		_, err := db.Exec(`
			INSERT INTO modifiers (id, name, name_alt, price, category)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, name_alt = EXCLUDED.name_alt, price = EXCLUDED.price, category = EXCLUDED.category`,
			m.id, m.name, m.nameAlt, m.price, m.category)
		if err != nil {
			log.Fatalf("Failed to seed modifier %s: %v", m.id, err)
		}
	}
	log.Printf("Seeded %d modifiers", len(modifiers))
}
