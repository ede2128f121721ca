package settingsservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/pkg/logger"
)

var ErrUnknownKey = errors.New("unknown text key")

// defaultTexts are the compiled-in interface texts. Stored overrides are
// merged over them key by key, so resetting is just dropping the overrides.
var defaultTexts = map[string]models.BilingualText{
	"app_title":      {FR: "Contrôle du Patrimoine de l'État", AR: "مراقبة ممتلكات الدولة"},
	"app_subtitle":   {FR: "Direction Générale du Patrimoine de l'État", AR: "الإدارة العامة لممتلكات الدولة"},
	"login_welcome":  {FR: "Bienvenue", AR: "مرحبا بكم"},
	"login_prompt":   {FR: "Connectez-vous pour continuer", AR: "سجل الدخول للمتابعة"},
	"footer_note":    {FR: "Usage interne uniquement", AR: "للاستخدام الداخلي فقط"},
	"dashboard_lead": {FR: "Vue d'ensemble du patrimoine déclaré", AR: "نظرة عامة على الممتلكات المصرح بها"},
}

// SettingsService owns the editable interface texts and the sheet sync
// endpoint URL.
type SettingsService struct {
	store recordstore.Store
	// fallbackSheetURL comes from the config file; a URL stored by the
	// operator always wins over it.
	fallbackSheetURL string
	lg               logger.Logger
}

func New(store recordstore.Store, fallbackSheetURL string, lg logger.Logger) *SettingsService {
	return &SettingsService{
		store:            store,
		fallbackSheetURL: fallbackSheetURL,
		lg:               lg,
	}
}

func (ss *SettingsService) loadOverrides(ctx context.Context) (map[string]models.BilingualText, error) {
	blob, err := ss.store.Load(ctx, recordstore.CollectionTexts)
	if errors.Is(err, recordstore.ErrNotFound) {
		return map[string]models.BilingualText{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("load texts error: %w", err)
	}

	var overrides map[string]models.BilingualText

	if err := json.Unmarshal(blob, &overrides); err != nil {
		return nil, fmt.Errorf("unmarshal texts error: %w", err)
	}

	return overrides, nil
}

// Texts returns the effective interface texts: compiled defaults with stored
// overrides applied. Stored keys that are no longer editable are dropped.
func (ss *SettingsService) Texts(ctx context.Context) (map[string]models.BilingualText, error) {
	overrides, err := ss.loadOverrides(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.BilingualText, len(defaultTexts))

	for key, val := range defaultTexts {
		out[key] = val
	}

	for key, val := range overrides {
		if _, ok := defaultTexts[key]; ok {
			out[key] = val
		}
	}

	return out, nil
}

// SetText stores one override. Only compiled-in keys are editable.
func (ss *SettingsService) SetText(ctx context.Context, key string, value models.BilingualText) error {
	if _, ok := defaultTexts[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	overrides, err := ss.loadOverrides(ctx)
	if err != nil {
		return err
	}

	overrides[key] = value

	blob, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("marshal texts error: %w", err)
	}

	if err := ss.store.Save(ctx, recordstore.CollectionTexts, blob); err != nil {
		return fmt.Errorf("save texts error: %w", err)
	}

	return nil
}

// ResetTexts drops every override, reverting to the compiled defaults.
func (ss *SettingsService) ResetTexts(ctx context.Context) error {
	err := ss.store.Delete(ctx, recordstore.CollectionTexts)
	if err != nil && !errors.Is(err, recordstore.ErrNotFound) {
		return fmt.Errorf("delete texts error: %w", err)
	}

	ss.lg.Infof("interface texts reset to defaults")

	return nil
}

// SheetURL returns the configured sheet sync endpoint, empty when sync is
// off.
func (ss *SettingsService) SheetURL(ctx context.Context) (string, error) {
	blob, err := ss.store.Load(ctx, recordstore.CollectionSheetURL)
	if errors.Is(err, recordstore.ErrNotFound) {
		return ss.fallbackSheetURL, nil
	} else if err != nil {
		return "", fmt.Errorf("load sheet url error: %w", err)
	}

	var url string

	if err := json.Unmarshal(blob, &url); err != nil {
		return "", fmt.Errorf("unmarshal sheet url error: %w", err)
	}

	return url, nil
}

// SetSheetURL stores the sheet sync endpoint. An empty value turns sync off.
func (ss *SettingsService) SetSheetURL(ctx context.Context, url string) error {
	blob, err := json.Marshal(url)
	if err != nil {
		return fmt.Errorf("marshal sheet url error: %w", err)
	}

	if err := ss.store.Save(ctx, recordstore.CollectionSheetURL, blob); err != nil {
		return fmt.Errorf("save sheet url error: %w", err)
	}

	return nil
}
