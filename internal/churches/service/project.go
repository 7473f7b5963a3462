package service

import (
	"github.com/global-church/church-search-api/internal/churches/repository"
	"github.com/global-church/church-search-api/internal/churches/transport"
)

func projectRows(rows []repository.Row, fields []string) []transport.Row {
	out := make([]transport.Row, len(rows))
	for i := range rows {
		out[i] = projectRow(&rows[i], fields)
	}
	return out
}

func projectRow(row *repository.Row, fields []string) transport.Row {
	item := make(transport.Row, len(fields))
	for _, field := range fields {
		if value, ok := columnValue(row, field); ok {
			item[field] = value
		}
	}
	return item
}

// columnValue maps a whitelisted column name to the row's value. Pointer
// fields pass through as-is so absent values serialize as JSON null.
func columnValue(row *repository.Row, column string) (interface{}, bool) {
	switch column {
	case "church_id":
		return row.ChurchID, true
	case "gers_id":
		return row.GersID, true
	case "name":
		return row.Name, true
	case "latitude":
		return row.Latitude, true
	case "longitude":
		return row.Longitude, true
	case "address":
		return row.Address, true
	case "locality":
		return row.Locality, true
	case "region":
		return row.Region, true
	case "postal_code":
		return row.PostalCode, true
	case "country":
		return row.Country, true
	case "website":
		return row.Website, true
	case "pipeline_status":
		return row.PipelineStatus, true
	case "belief_type":
		return row.BeliefType, true
	case "trinitarian_beliefs":
		return row.Trinitarian, true
	case "church_beliefs_url":
		return row.ChurchBeliefsURL, true
	case "services_info":
		return row.ServicesInfo, true
	case "service_languages":
		return row.ServiceLanguages, true
	case "ministry_names":
		return row.MinistryNames, true
	case "best_phone":
		return row.BestPhone, true
	case "best_email":
		return row.BestEmail, true
	case "instagram_url":
		return row.InstagramURL, true
	case "youtube_url":
		return row.YoutubeURL, true
	default:
		return nil, false
	}
}
