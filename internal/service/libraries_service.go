package service

import (
	"math"
	"sort"
	"strings"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

const earthRadiusKm = 6371.0

type LibrariesService struct {
	libraries []models.Library
}

func NewLibrariesService(libraries []models.Library) *LibrariesService {
	if libraries == nil {
		libraries = models.DefaultLibraries
	}
	return &LibrariesService{libraries: libraries}
}

func (s *LibrariesService) All() []models.Library {
	return append([]models.Library(nil), s.libraries...)
}

// Search фильтрует по названию или адресу без учёта регистра
func (s *LibrariesService) Search(term string) []models.Library {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Library, 0, len(s.libraries))
	for _, l := range s.libraries {
		if term == "" ||
			strings.Contains(strings.ToLower(l.Name), term) ||
			strings.Contains(strings.ToLower(l.Address), term) {
			out = append(out, l)
		}
	}
	return out
}

// Nearest сортирует библиотеки по расстоянию до точки
func (s *LibrariesService) Nearest(lat, lon float64) []models.Library {
	out := s.All()
	for i := range out {
		out[i].DistanceKm = Distance(lat, lon, out[i].Lat, out[i].Lon)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// Distance: расстояние по большому кругу в километрах (гаверсинус)
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
