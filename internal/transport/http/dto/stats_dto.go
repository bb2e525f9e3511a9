package dto

import (
	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
	"github.com/Dijinx-Lab/Eventify-Server/internal/services/stats"
)

type UpdateStatsRequest struct {
	Preference *string `json:"preference"`
	Bookmarked *bool   `json:"bookmarked"`
}

type StatsUserPayload struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
}

type StatsUsersResponse struct {
	Stats model.StatCounts   `json:"stats"`
	Users []StatsUserPayload `json:"users"`
}

func FromStatsUsers(result stats.StatsUsers) StatsUsersResponse {
	users := make([]StatsUserPayload, 0, len(result.Users))
	for _, user := range result.Users {
		users = append(users, StatsUserPayload{
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Email:       user.Email,
			CountryCode: user.CountryCode,
			Phone:       user.Phone,
		})
	}
	return StatsUsersResponse{Stats: result.Counts, Users: users}
}
