package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sentinel errors for vendor lookups.
var (
	ErrCredentialsRequired = errors.New("amadeus: api credentials required")
	ErrCityNotFound        = errors.New("amadeus: city not found")
	ErrNoOffers            = errors.New("amadeus: no offers found")
)

// Client talks to the Amadeus self-service APIs. It handles the OAuth2
// client-credentials flow and caches the access token until shortly before
// expiry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New creates a client. Both credentials are required; baseURL defaults to
// the Amadeus test environment.
func New(apiKey, apiSecret, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(apiSecret) == "" {
		return nil, ErrCredentialsRequired
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://test.api.amadeus.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
	}, nil
}

// token returns a valid access token, refreshing it when missing or within a
// minute of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Add(time.Minute).Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.apiKey)
	form.Set("client_secret", c.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("amadeus: token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("amadeus: token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("amadeus: token request returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("amadeus: token decode failed: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("amadeus: token response had no access token")
	}

	c.accessToken = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// get performs an authenticated GET and decodes the "data" envelope into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("amadeus: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("amadeus: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("amadeus: %s returned status %d", path, resp.StatusCode)
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("amadeus: decode failed: %w", err)
	}
	if len(envelope.Data) == 0 {
		return ErrNoOffers
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("amadeus: decode failed: %w", err)
	}
	return nil
}

type location struct {
	IataCode string `json:"iataCode"`
	GeoCode  struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"geoCode"`
}

// CityCode resolves a city name to its IATA code.
func (c *Client) CityCode(ctx context.Context, city string) (string, error) {
	locations, err := c.cityLocations(ctx, city)
	if err != nil {
		return "", err
	}
	return locations[0].IataCode, nil
}

func (c *Client) cityLocations(ctx context.Context, city string) ([]location, error) {
	params := url.Values{}
	params.Set("keyword", strings.TrimSpace(city))
	params.Set("subType", "CITY")

	var locations []location
	if err := c.get(ctx, "/v1/reference-data/locations", params, &locations); err != nil {
		if errors.Is(err, ErrNoOffers) {
			return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
		}
		return nil, err
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	return locations, nil
}

// FlightOffer is one priced flight option.
type FlightOffer struct {
	ID          string `json:"id"`
	Itineraries []struct {
		Duration string `json:"duration"`
		Segments []struct {
			Departure struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"arrival"`
			CarrierCode   string `json:"carrierCode"`
			Number        string `json:"number"`
			NumberOfStops int    `json:"numberOfStops"`
		} `json:"segments"`
	} `json:"itineraries"`
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
}

// FlightOffers searches priced flight offers between two cities. City names
// are resolved to IATA codes first.
func (c *Client) FlightOffers(ctx context.Context, originCity, destCity, departureDate, returnDate string, adults int) ([]FlightOffer, error) {
	originCode, err := c.CityCode(ctx, originCity)
	if err != nil {
		return nil, err
	}
	destCode, err := c.CityCode(ctx, destCity)
	if err != nil {
		return nil, err
	}
	if adults < 1 {
		adults = 1
	}

	params := url.Values{}
	params.Set("originLocationCode", originCode)
	params.Set("destinationLocationCode", destCode)
	params.Set("departureDate", departureDate)
	params.Set("adults", strconv.Itoa(adults))
	params.Set("currencyCode", "USD")
	params.Set("max", "4")
	if returnDate != "" {
		params.Set("returnDate", returnDate)
	}

	var offers []FlightOffer
	if err := c.get(ctx, "/v2/shopping/flight-offers", params, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// Hotel is one property from the by-city hotel list.
type Hotel struct {
	HotelID string `json:"hotelId"`
	Name    string `json:"name"`
	Address struct {
		CityName    string   `json:"cityName"`
		CountryCode string   `json:"countryCode"`
		Lines       []string `json:"lines"`
	} `json:"address"`
}

// HotelsByCity lists hotels around a city center.
func (c *Client) HotelsByCity(ctx context.Context, city string, radiusKM int) ([]Hotel, error) {
	cityCode, err := c.CityCode(ctx, city)
	if err != nil {
		return nil, err
	}
	if radiusKM <= 0 {
		radiusKM = 5
	}

	params := url.Values{}
	params.Set("cityCode", cityCode)
	params.Set("radius", strconv.Itoa(radiusKM))
	params.Set("radiusUnit", "KM")

	var hotels []Hotel
	if err := c.get(ctx, "/v1/reference-data/locations/hotels/by-city", params, &hotels); err != nil {
		return nil, err
	}
	return hotels, nil
}

// HotelOffer is one priced stay for one property.
type HotelOffer struct {
	Hotel struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"hotel"`
	Offers []struct {
		CheckInDate  string `json:"checkInDate"`
		CheckOutDate string `json:"checkOutDate"`
		Room         struct {
			Type string `json:"type"`
		} `json:"room"`
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
	} `json:"offers"`
}

// HotelOffers fetches priced offers for a set of hotel ids.
func (c *Client) HotelOffers(ctx context.Context, hotelIDs []string, checkIn, checkOut string, adults int) ([]HotelOffer, error) {
	if len(hotelIDs) == 0 {
		return nil, ErrNoOffers
	}
	if adults < 1 {
		adults = 1
	}

	params := url.Values{}
	params.Set("hotelIds", strings.Join(hotelIDs, ","))
	params.Set("checkInDate", checkIn)
	params.Set("checkOutDate", checkOut)
	params.Set("adults", strconv.Itoa(adults))

	var offers []HotelOffer
	if err := c.get(ctx, "/v3/shopping/hotel-offers", params, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// Activity is one local experience near a destination.
type Activity struct {
	Name             string `json:"name"`
	Rating           string `json:"rating"`
	ShortDescription string `json:"shortDescription"`
	Price            struct {
		Amount       string `json:"amount"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"price"`
	BookingLink string `json:"bookingLink"`
}

// Activities searches experiences near a city's coordinates.
func (c *Client) Activities(ctx context.Context, city string, radiusKM int) ([]Activity, error) {
	locations, err := c.cityLocations(ctx, city)
	if err != nil {
		return nil, err
	}
	geo := locations[0].GeoCode
	if geo.Latitude == 0 && geo.Longitude == 0 {
		return nil, fmt.Errorf("%w: %s has no coordinates", ErrCityNotFound, city)
	}
	if radiusKM <= 0 {
		radiusKM = 20
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(geo.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(geo.Longitude, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(radiusKM))

	var activities []Activity
	if err := c.get(ctx, "/v1/shopping/activities", params, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// SearchFlights resolves cities and returns the offers as a JSON snippet for
// prompt assembly.
func (c *Client) SearchFlights(ctx context.Context, origin, destination, departureDate, returnDate string, adults int) (string, error) {
	offers, err := c.FlightOffers(ctx, origin, destination, departureDate, returnDate, adults)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(offers)
	if err != nil {
		return "", fmt.Errorf("amadeus: offers marshal: %w", err)
	}
	return string(data), nil
}

// SearchHotels lists hotels in the city, prices the first three, and returns
// the offers as a JSON snippet for prompt assembly.
func (c *Client) SearchHotels(ctx context.Context, city, checkIn, checkOut string, adults int) (string, error) {
	hotels, err := c.HotelsByCity(ctx, city, 5)
	if err != nil {
		return "", err
	}
	if len(hotels) > 3 {
		hotels = hotels[:3]
	}
	ids := make([]string, 0, len(hotels))
	for _, h := range hotels {
		ids = append(ids, h.HotelID)
	}

	offers, err := c.HotelOffers(ctx, ids, checkIn, checkOut, adults)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(offers)
	if err != nil {
		return "", fmt.Errorf("amadeus: offers marshal: %w", err)
	}
	return string(data), nil
}

// SearchExperiences looks up activities near the city and returns them as a
// JSON snippet for prompt assembly.
func (c *Client) SearchExperiences(ctx context.Context, city string) (string, error) {
	activities, err := c.Activities(ctx, city, 20)
	if err != nil {
		return "", err
	}
	if len(activities) > 10 {
		activities = activities[:10]
	}
	data, err := json.Marshal(activities)
	if err != nil {
		return "", fmt.Errorf("amadeus: activities marshal: %w", err)
	}
	return string(data), nil
}
