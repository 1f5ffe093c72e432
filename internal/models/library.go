package models

type LibraryStatus string

const (
	LibraryOpen   LibraryStatus = "Open"
	LibraryClosed LibraryStatus = "Closed"
)

type Library struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Lat      float64       `json:"lat"`
	Lon      float64       `json:"lon"`
	Status   LibraryStatus `json:"status"`
	Capacity int           `json:"capacity"`
	Rating   float64       `json:"rating"`
	// DistanceKm заполняется при поиске ближайших
	DistanceKm float64 `json:"distance_km,omitempty"`
}

// DefaultLibraries: встроенный справочник библиотек кампуса
var DefaultLibraries = []Library{
	{ID: 1, Name: "Central University Library", Address: "Campus Block A, Main Circle", Lat: 28.6139, Lon: 77.2090, Status: LibraryOpen, Capacity: 85, Rating: 4.8},
	{ID: 2, Name: "Engineering Faculty Library", Address: "Block E, Sector 4", Lat: 28.6200, Lon: 77.2200, Status: LibraryOpen, Capacity: 40, Rating: 4.5},
	{ID: 3, Name: "Science Research Center", Address: "Innovation Hub, East Wing", Lat: 28.6100, Lon: 77.2300, Status: LibraryClosed, Capacity: 0, Rating: 4.9},
	{ID: 4, Name: "City Public Library", Address: "Main Street, 2nd Cross", Lat: 28.6300, Lon: 77.2100, Status: LibraryOpen, Capacity: 65, Rating: 4.2},
}
