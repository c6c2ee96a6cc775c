package shared

// Location is a named query point used by the cache warmer.
type Location struct {
	Name string
	Lat  float64
	Lng  float64
}

// WarmLocations are metros with steady traffic; warming them keeps the
// first request of the day off the geodata API.
var WarmLocations = []Location{
	{Name: "Karachi", Lat: 24.8607, Lng: 67.0011},
	{Name: "Lahore", Lat: 31.5204, Lng: 74.3587},
	{Name: "Islamabad", Lat: 33.6844, Lng: 73.0479},
	{Name: "Rawalpindi", Lat: 33.5651, Lng: 73.0169},
	{Name: "Faisalabad", Lat: 31.4504, Lng: 73.1350},
	{Name: "Peshawar", Lat: 34.0151, Lng: 71.5249},
	{Name: "Quetta", Lat: 30.1798, Lng: 66.9750},
	{Name: "Multan", Lat: 30.1575, Lng: 71.5249},
	{Name: "Hyderabad", Lat: 25.3960, Lng: 68.3578},
	{Name: "New York", Lat: 40.7128, Lng: -74.0060},
	{Name: "London", Lat: 51.5074, Lng: -0.1278},
}
