package locations

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

var (
	client      = http.Client{}
	lastRequest = time.Now().Add(-10 * time.Second)
)

const (
	throttling = 3 * time.Second
)

type NominatimAddress struct {
	City         string `json:"city"`
	Municipality string `json:"municipality"`
	County       string `json:"county"`
	Province     string `json:"province"`
	State        string `json:"state"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

type NominatimLocation struct {
	DisplayName string           `json:"display_name"`
	Address     NominatimAddress `json:"address"`
}

func (n *NominatimLocation) GetCity() string {
	if n.Address.City != "" {
		return n.Address.City
	}
	if n.Address.Municipality != "" {
		return n.Address.Municipality
	}
	if n.Address.County != "" {
		return n.Address.County
	}
	if n.Address.Province != "" {
		return n.Address.Province
	}
	return n.Address.State
}

func getNominatimLocation(lat, long float64) *NominatimLocation {
	// Add throttling
	if time.Since(lastRequest) < throttling {
		time.Sleep(throttling - time.Since(lastRequest))
	}
	lastRequest = time.Now()

	url := fmt.Sprintf("https://nominatim.openstreetmap.org/reverse?format=json&lat=%f&lon=%f", lat, long)
	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("accept-language", "en")
	resp, err := client.Do(req)
	if err != nil {
		log.Println("Failed request to:", url, err)
		return nil
	}
	result := &NominatimLocation{}
	decoder := json.NewDecoder(resp.Body)
	defer resp.Body.Close()

	if err = decoder.Decode(result); err != nil {
		log.Println(url, err)
		return nil
	}
	return result
}
