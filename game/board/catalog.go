package board

import "sync"

// Well-known space ids on the Medellín board
const (
	StartSpaceID = 0
	JailSpaceID  = 10
)

var (
	defaultBoard *Board
	defaultOnce  sync.Once
)

// Default returns the Medellín board shared by every game
func Default() *Board {
	defaultOnce.Do(func() {
		b, err := New(medellinSpaces())
		if err != nil {
			panic(err)
		}
		defaultBoard = b
	})
	return defaultBoard
}

func medellinSpaces() []Space {
	return []Space{
		{ID: 0, Name: "GO", Type: Corner, Side: Bottom},
		{ID: 1, Name: "Barrio Aranjuez", Type: Property, Color: "brown", Price: 60000, Rent: []int{2000, 10000, 30000, 90000, 160000, 250000}, Side: Bottom},
		{ID: 2, Name: "Arca Comunitaria", Type: CommunityChest, Side: Bottom},
		{ID: 3, Name: "Barrio Manrique", Type: Property, Color: "brown", Price: 60000, Rent: []int{4000, 20000, 60000, 180000, 320000, 450000}, Side: Bottom},
		{ID: 4, Name: "Impuesto de Renta DIAN", Type: Tax, TaxAmount: 200000, Side: Bottom},
		{ID: 5, Name: "Metro Línea A", Type: Railroad, Price: 200000, Side: Bottom},
		{ID: 6, Name: "Bello Centro", Type: Property, Color: "lightblue", Price: 100000, Rent: []int{6000, 30000, 90000, 270000, 400000, 550000}, Side: Bottom},
		{ID: 7, Name: "Suerte", Type: Chance, Side: Bottom},
		{ID: 8, Name: "Copacabana", Type: Property, Color: "lightblue", Price: 100000, Rent: []int{6000, 30000, 90000, 270000, 400000, 550000}, Side: Bottom},
		{ID: 9, Name: "Girardota", Type: Property, Color: "lightblue", Price: 120000, Rent: []int{8000, 40000, 100000, 300000, 450000, 600000}, Side: Bottom},

		{ID: 10, Name: "Cárcel", Type: Corner, Side: Right},
		{ID: 11, Name: "Itagüí Centro", Type: Property, Color: "pink", Price: 140000, Rent: []int{10000, 50000, 150000, 450000, 625000, 750000}, Side: Right},
		{ID: 12, Name: "EPM Energía", Type: Utility, Price: 150000, Side: Right},
		{ID: 13, Name: "El Guayabo", Type: Property, Color: "pink", Price: 140000, Rent: []int{10000, 50000, 150000, 450000, 625000, 750000}, Side: Right},
		{ID: 14, Name: "La Estrella", Type: Property, Color: "pink", Price: 160000, Rent: []int{12000, 60000, 180000, 500000, 700000, 900000}, Side: Right},
		{ID: 15, Name: "Metro Línea B", Type: Railroad, Price: 200000, Side: Right},
		{ID: 16, Name: "Envigado Centro", Type: Property, Color: "orange", Price: 180000, Rent: []int{14000, 70000, 200000, 550000, 750000, 950000}, Side: Right},
		{ID: 17, Name: "Arca Comunitaria", Type: CommunityChest, Side: Right},
		{ID: 18, Name: "Zona Rosa", Type: Property, Color: "orange", Price: 180000, Rent: []int{14000, 70000, 200000, 550000, 750000, 950000}, Side: Right},
		{ID: 19, Name: "Sabaneta", Type: Property, Color: "orange", Price: 200000, Rent: []int{16000, 80000, 220000, 600000, 800000, 1000000}, Side: Right},

		{ID: 20, Name: "Parqueadero Gratis", Type: Corner, Side: Top},
		{ID: 21, Name: "Laureles", Type: Property, Color: "red", Price: 220000, Rent: []int{18000, 90000, 250000, 700000, 875000, 1050000}, Side: Top},
		{ID: 22, Name: "Suerte", Type: Chance, Side: Top},
		{ID: 23, Name: "Carlos E. Restrepo", Type: Property, Color: "red", Price: 220000, Rent: []int{18000, 90000, 250000, 700000, 875000, 1050000}, Side: Top},
		{ID: 24, Name: "Estadio", Type: Property, Color: "red", Price: 240000, Rent: []int{20000, 100000, 300000, 750000, 925000, 1100000}, Side: Top},
		{ID: 25, Name: "Metrocable", Type: Railroad, Price: 200000, Side: Top},
		{ID: 26, Name: "La 70", Type: Property, Color: "yellow", Price: 260000, Rent: []int{22000, 110000, 330000, 800000, 975000, 1150000}, Side: Top},
		{ID: 27, Name: "Nutibara", Type: Property, Color: "yellow", Price: 260000, Rent: []int{22000, 110000, 330000, 800000, 975000, 1150000}, Side: Top},
		{ID: 28, Name: "Acueducto EPM", Type: Utility, Price: 150000, Side: Top},
		{ID: 29, Name: "El Tesoro", Type: Property, Color: "yellow", Price: 280000, Rent: []int{24000, 120000, 360000, 850000, 1025000, 1200000}, Side: Top},

		{ID: 30, Name: "Vaya a Bellavista", Type: Corner, Side: Left},
		{ID: 31, Name: "Manila", Type: Property, Color: "green", Price: 300000, Rent: []int{26000, 130000, 390000, 900000, 1100000, 1275000}, Side: Left},
		{ID: 32, Name: "El Poblado Centro", Type: Property, Color: "green", Price: 300000, Rent: []int{26000, 130000, 390000, 900000, 1100000, 1275000}, Side: Left},
		{ID: 33, Name: "Arca Comunitaria", Type: CommunityChest, Side: Left},
		{ID: 34, Name: "Zona Rosa Poblado", Type: Property, Color: "green", Price: 320000, Rent: []int{28000, 150000, 450000, 1000000, 1200000, 1400000}, Side: Left},
		{ID: 35, Name: "Tranvía", Type: Railroad, Price: 200000, Side: Left},
		{ID: 36, Name: "Suerte", Type: Chance, Side: Left},
		{ID: 37, Name: "El Poblado", Type: Property, Color: "darkblue", Price: 350000, Rent: []int{35000, 175000, 500000, 1100000, 1300000, 1500000}, Side: Left},
		{ID: 38, Name: "Impuesto de Lujo", Type: Tax, TaxAmount: 1500000, Side: Left},
		{ID: 39, Name: "Llanogrande", Type: Property, Color: "darkblue", Price: 400000, Rent: []int{50000, 200000, 600000, 1400000, 1700000, 2000000}, Side: Left},
	}
}
