package configs

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"

	"GoRAGWorkshop/app/faults"
	"GoRAGWorkshop/app/restclient"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Endpoint is the OpenAI-compatible base URL, version segment included.
func (m ModelConfig) Endpoint() string {
	if m.BaseURL != "" {
		return m.BaseURL
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1beta1/projects/%s/locations/%s/endpoints/openapi",
		m.Location, m.ProjectID, m.Location)
}

func (m ModelConfig) UsesVertex() bool {
	return m.BaseURL == ""
}

// BuildModelClient returns a REST client for the chat and embedding calls.
// Vertex AI requests carry Application Default Credentials; other endpoints
// send LLM_API_KEY as a bearer token when set.
func (m ModelConfig) BuildModelClient(ctx context.Context) (*restclient.RestClient, error) {
	opts := []restclient.Option{restclient.WithTimeout(m.Timeout)}
	headers := map[string]string{}

	if m.UsesVertex() {
		ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
		if err != nil {
			return nil, faults.Configuration("load google credentials", err)
		}
		opts = append(opts, restclient.WithTokenSource(ts))
	} else if m.APIKey != "" {
		headers["Authorization"] = "Bearer " + m.APIKey
	}

	return restclient.NewRestClient(m.Endpoint(), headers, opts...), nil
}
