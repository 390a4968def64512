package metadomain

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors Cursors `json:"cursors"`
}

// Insight é uma linha de /insights com os valores como a API devolve (strings)
type Insight struct {
	AccountID    string   `json:"account_id"`
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	Impressions  string   `json:"impressions"`
	Clicks       string   `json:"clicks"`
	Spend        string   `json:"spend"`
	Actions      []Action `json:"actions"`
	ActionValues []Action `json:"action_values"`
	DateStart    string   `json:"date_start"`
	DateStop     string   `json:"date_stop"`
}

type ResponseInsights struct {
	Data   []Insight `json:"data"`
	Paging Paging    `json:"paging"`
}

type Me struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Ações contabilizadas como conversão. A primeira encontrada de cada grupo
// vence para não contar o mesmo evento duas vezes (pixel e omni).
var ConversionActionGroups = [][]string{
	{"omni_purchase", "purchase", "offsite_conversion.fb_pixel_purchase"},
	{"lead", "offsite_conversion.fb_pixel_lead", "onsite_conversion.lead_grouped"},
	{"complete_registration", "offsite_conversion.fb_pixel_complete_registration"},
}

// Ações cujo action_values representa receita
var RevenueActionTypes = []string{"omni_purchase", "purchase", "offsite_conversion.fb_pixel_purchase"}

func (i *Insight) GetImpressions() int64 {
	return parseInt(i.Impressions, "impressions")
}

func (i *Insight) GetClicks() int64 {
	return parseInt(i.Clicks, "clicks")
}

func (i *Insight) GetSpend() float64 {
	return parseFloat(i.Spend, "spend")
}

func (i *Insight) GetConversions() float64 {
	values := actionsByType(i.Actions)

	var total float64
	for _, group := range ConversionActionGroups {
		for _, actionType := range group {
			if v, ok := values[actionType]; ok {
				total += v
				break
			}
		}
	}
	return total
}

func (i *Insight) GetRevenue() float64 {
	values := actionsByType(i.ActionValues)

	for _, actionType := range RevenueActionTypes {
		if v, ok := values[actionType]; ok {
			return v
		}
	}
	return 0
}

func actionsByType(actions []Action) map[string]float64 {
	values := make(map[string]float64, len(actions))
	for _, action := range actions {
		values[action.ActionType] = parseFloat(action.Value, action.ActionType)
	}
	return values
}

func parseInt(value, field string) int64 {
	if value == "" {
		return 0
	}

	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field": field,
			"value": value,
			"error": err.Error(),
		}).Warn("insights: erro ao converter valor para inteiro")
		return 0
	}
	return v
}

func parseFloat(value, field string) float64 {
	if value == "" {
		return 0
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field": field,
			"value": value,
			"error": err.Error(),
		}).Warn("insights: erro ao converter valor para float")
		return 0
	}
	return v
}
