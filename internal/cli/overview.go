package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/models"
	"github.com/noah-isme/painel-admin-api/internal/service"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
)

type overviewOptions struct {
	apiURL     string
	token      string
	pedagogico bool
	refresh    bool
	timeout    time.Duration
}

func newOverviewCmd(a *app) *cobra.Command {
	opts := &overviewOptions{}
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print the platform dashboard served by the gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.apiURL == "" {
				opts.apiURL = fmt.Sprintf("http://localhost:%d%s", a.cfg.Port, a.cfg.APIPrefix)
			}
			if opts.token == "" {
				opts.token = os.Getenv("PAINEL_TOKEN")
			}
			if opts.token == "" && a.cfg.IsDevelopment() {
				role := models.RoleAdmin
				if opts.pedagogico {
					role = models.RolePedagogico
				}
				signed, err := service.NewTokenService(service.TokenConfig{Secret: a.cfg.JWT.Secret, Issuer: a.cfg.JWT.Issuer}).
					Issue("painelctl", role, 5*time.Minute)
				if err != nil {
					return err
				}
				opts.token = signed
			}
			overview, err := fetchOverview(cmd.Context(), http.DefaultClient, opts)
			if err != nil {
				return err
			}
			return renderOverview(cmd.OutOrStdout(), overview)
		},
	}
	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "gateway base URL including the API prefix")
	cmd.Flags().StringVar(&opts.token, "token", "", "bearer token, defaults to $PAINEL_TOKEN or a minted dev token")
	cmd.Flags().BoolVar(&opts.pedagogico, "pedagogico", false, "request the pedagogical variant")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the gateway cache")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")
	return cmd
}

type overviewEnvelope struct {
	Data  *dto.PlataformaOverviewResponse `json:"data"`
	Error *appErrors.Error                `json:"error"`
}

func fetchOverview(ctx context.Context, client *http.Client, opts *overviewOptions) (*dto.PlataformaOverviewResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	target := strings.TrimRight(opts.apiURL, "/") + "/dashboard/plataforma"
	if opts.pedagogico {
		target += "/pedagogico"
	}
	if opts.refresh {
		target += "?refresh=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var envelope overviewEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}
	if resp.StatusCode != http.StatusOK || envelope.Data == nil {
		return nil, fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}
	return envelope.Data, nil
}
