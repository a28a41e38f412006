package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"greentrip/internal/common/config"
	"greentrip/internal/common/httpclient"
	"greentrip/internal/common/logger"
	"greentrip/internal/models"
)

// AmadeusClient serves the flights and hotels categories from the Amadeus
// self-service APIs. The OAuth2 token is cached and refreshed under a mutex;
// everything else is stateless per call.
type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	client       *httpclient.Client
	log          logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAmadeusClient(cfg config.AmadeusConfig, client *httpclient.Client, log logger.Logger) *AmadeusClient {
	return &AmadeusClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		client:       client,
		log:          log.With(map[string]interface{}{"provider": "amadeus"}),
	}
}

// Configured reports whether credentials are present. When false, callers
// short-circuit to fallback data without attempting a call.
func (c *AmadeusClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

func (c *AmadeusClient) refreshToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: token request: %v", ErrProviderFailed, err)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := decodeBody(resp, &result); err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return nil
}

func (c *AmadeusClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *AmadeusClient) get(ctx context.Context, path string, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	return decodeBody(resp, out)
}

type amadeusFlightOffersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure struct {
					At string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					At string `json:"at"`
				} `json:"arrival"`
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
			} `json:"segments"`
		} `json:"itineraries"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
	} `json:"data"`
}

// SearchFlights queries the Flight Offers Search API and normalizes the top
// offers into flight candidates.
func (c *AmadeusClient) SearchFlights(ctx context.Context, origin, destination, departureDate, returnDate string) ([]models.Flight, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	path := fmt.Sprintf(
		"/v2/shopping/flight-offers?originLocationCode=%s&destinationLocationCode=%s"+
			"&departureDate=%s&returnDate=%s&adults=1&max=6&currencyCode=USD",
		url.QueryEscape(origin),
		url.QueryEscape(destination),
		url.QueryEscape(departureDate),
		url.QueryEscape(returnDate),
	)

	var resp amadeusFlightOffersResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	flights := make([]models.Flight, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if len(offer.Itineraries) == 0 {
			continue
		}
		price := parseAmount(offer.Price.GrandTotal)
		if price <= 0 {
			continue
		}

		outbound := offer.Itineraries[0]
		carrier := ""
		if len(outbound.Segments) > 0 {
			carrier = outbound.Segments[0].CarrierCode
		} else if len(offer.ValidatingAirlineCodes) > 0 {
			carrier = offer.ValidatingAirlineCodes[0]
		}

		f := models.Flight{
			Airline:  airlineName(carrier),
			Price:    price,
			Currency: offer.Price.Currency,
			Stops:    maxInt(0, len(outbound.Segments)-1),
			Duration: isoDurationHuman(outbound.Duration),
		}
		if len(outbound.Segments) > 0 {
			f.DepartureTime = outbound.Segments[0].Departure.At
			f.ArrivalTime = outbound.Segments[len(outbound.Segments)-1].Arrival.At
			f.FlightNumber = carrier + outbound.Segments[0].Number
		}
		flights = append(flights, f)
	}

	if len(flights) == 0 {
		return nil, fmt.Errorf("%w: no usable flight offers", ErrProviderFailed)
	}
	return flights, nil
}

type amadeusHotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
	} `json:"data"`
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Rating   string `json:"rating"`
			Address  struct {
				CityName string `json:"cityName"`
			} `json:"address"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// SearchHotels queries the Hotel List + Hotel Offers APIs for a city code and
// normalizes available offers into hotel candidates. Prices are reported per
// night.
func (c *AmadeusClient) SearchHotels(ctx context.Context, cityCode, checkIn, checkOut string, nights int) ([]models.Hotel, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if nights < 1 {
		nights = 1
	}

	listPath := fmt.Sprintf(
		"/v1/reference-data/locations/hotels/by-city?cityCode=%s&radius=5&radiusUnit=KM&hotelSource=ALL",
		url.QueryEscape(CityCodeForHotels(cityCode)),
	)

	var list amadeusHotelListResponse
	if err := c.get(ctx, listPath, &list); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Data))
	for _, h := range list.Data {
		ids = append(ids, h.HotelID)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no hotels for city %s", ErrProviderFailed, cityCode)
	}
	if len(ids) > 20 {
		ids = ids[:20] // rate-limit guard
	}

	offersPath := fmt.Sprintf(
		"/v3/shopping/hotel-offers?hotelIds=%s&checkInDate=%s&checkOutDate=%s&adults=1&roomQuantity=1&currency=USD&bestRateOnly=true",
		url.QueryEscape(strings.Join(ids, ",")),
		url.QueryEscape(checkIn),
		url.QueryEscape(checkOut),
	)

	var offers amadeusHotelOffersResponse
	if err := c.get(ctx, offersPath, &offers); err != nil {
		return nil, err
	}

	hotels := make([]models.Hotel, 0, len(offers.Data))
	for _, item := range offers.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}
		total := parseAmount(item.Offers[0].Price.Total)
		if total <= 0 {
			continue
		}

		location := item.Hotel.Address.CityName
		if location == "" {
			location = item.Hotel.CityCode
		}

		hotels = append(hotels, models.Hotel{
			Name:        item.Hotel.Name,
			Location:    location,
			NightlyRate: total / float64(nights),
			Rating:      parseStarRating(item.Hotel.Rating),
			Currency:    item.Offers[0].Price.Currency,
		})
	}

	if len(hotels) == 0 {
		return nil, fmt.Errorf("%w: no available hotel offers", ErrProviderFailed)
	}
	return hotels, nil
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseStarRating(s string) float64 {
	if s == "" {
		return 4.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 4.0
	}
	if v > 5 {
		v = 5
	}
	return v
}

// isoDurationHuman converts ISO 8601 durations like PT5H30M to "5h 30m".
func isoDurationHuman(iso string) string {
	if iso == "" {
		return ""
	}
	iso = strings.TrimPrefix(iso, "PT")
	var parts []string
	if i := strings.Index(iso, "H"); i >= 0 {
		parts = append(parts, iso[:i]+"h")
		iso = iso[i+1:]
	}
	if i := strings.Index(iso, "M"); i >= 0 {
		parts = append(parts, iso[:i]+"m")
	}
	return strings.Join(parts, " ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var airlineNames = map[string]string{
	"TK": "Turkish Airlines",
	"LH": "Lufthansa",
	"AF": "Air France",
	"BA": "British Airways",
	"EK": "Emirates",
	"QR": "Qatar Airways",
	"FR": "Ryanair",
	"U2": "EasyJet",
	"W6": "Wizz Air",
	"UA": "United Airlines",
	"AA": "American Airlines",
	"DL": "Delta Air Lines",
	"KL": "KLM",
	"IB": "Iberia",
	"LX": "Swiss International Air Lines",
	"SQ": "Singapore Airlines",
	"NH": "ANA",
	"JL": "Japan Airlines",
	"EY": "Etihad Airways",
}

func airlineName(code string) string {
	if name, ok := airlineNames[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}
