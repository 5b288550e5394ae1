package dadataclient

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"auth-service/internal/domain"

	"github.com/go-resty/resty/v2"
)

const findByINNURL = "https://suggestions.dadata.ru/suggestions/api/4_1/rs/findById/party"

// Client resolves Russian tax IDs (INN) against the DaData EGRUL/EGRIP
// registry.
type Client struct {
	http   *resty.Client
	apiKey string
}

func NewDaDataClient(apiKey string) *Client {
	return &Client{
		http:   resty.New().SetTimeout(10 * time.Second),
		apiKey: apiKey,
	}
}

type suggestResponse struct {
	Suggestions []struct {
		Value string `json:"value"`
		Data  struct {
			INN  string `json:"inn"`
			KPP  string `json:"kpp"`
			OGRN string `json:"ogrn"`
			Type string `json:"type"`
			Name struct {
				FullWithOPF string `json:"full_with_opf"`
			} `json:"name"`
			Management struct {
				Name string `json:"name"`
			} `json:"management"`
			FIO struct {
				Surname    string `json:"surname"`
				Name       string `json:"name"`
				Patronymic string `json:"patronymic"`
			} `json:"fio"`
			Address struct {
				UnrestrictedValue string `json:"unrestricted_value"`
			} `json:"address"`
			OKVED string `json:"okved"`
			State struct {
				Status string `json:"status"`
			} `json:"state"`
		} `json:"data"`
	} `json:"suggestions"`
}

// Resolve looks up an organization by INN. A nil result with nil error means
// the registry has no match.
func (c *Client) Resolve(ctx context.Context, inn string) (*domain.Organization, error) {
	log.Printf("DaData lookup | INN=%s", inn)

	var body suggestResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Token "+c.apiKey).
		SetBody(map[string]string{"query": inn}).
		SetResult(&body).
		Post(findByINNURL)
	if err != nil {
		return nil, fmt.Errorf("dadata request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("dadata returned status %d", resp.StatusCode())
	}

	if len(body.Suggestions) == 0 {
		return nil, nil
	}

	s := body.Suggestions[0]
	status := s.Data.State.Status
	if status == "" {
		status = "ACTIVE"
	}
	orgType := s.Data.Type
	if orgType == "" {
		orgType = "LEGAL"
	}

	return &domain.Organization{
		INN:          s.Data.INN,
		KPP:          s.Data.KPP,
		OGRN:         s.Data.OGRN,
		NameShort:    s.Value,
		NameFull:     s.Data.Name.FullWithOPF,
		Type:         orgType,
		DirectorName: directorName(s.Data.Management.Name, s.Data.FIO.Surname, s.Data.FIO.Name, s.Data.FIO.Patronymic),
		Address:      s.Data.Address.UnrestrictedValue,
		OKVED:        s.Data.OKVED,
		Status:       status,
	}, nil
}

// Legal entities carry the director under management.name; individual
// entrepreneurs have an empty management and use the fio block instead.
func directorName(management, surname, name, patronymic string) string {
	if management != "" {
		return management
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{surname, name, patronymic} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
