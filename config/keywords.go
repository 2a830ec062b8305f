package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/yourusername/quote-bot/internal/usecase"
	"gopkg.in/yaml.v3"
)

// ConversationFile KEYWORDS_FILE tarkibi. Empty groups keep the defaults.
type ConversationFile struct {
	Keywords struct {
		Delete         []string `yaml:"delete"`
		Replace        []string `yaml:"replace"`
		CartClear      []string `yaml:"cart_clear"`
		Greeting       []string `yaml:"greeting"`
		Location       []string `yaml:"location"`
		Delivery       []string `yaml:"delivery"`
		Payment        []string `yaml:"payment"`
		Catalog        []string `yaml:"catalog"`
		Checkout       []string `yaml:"checkout"`
		OrderIntent    []string `yaml:"order_intent"`
		NameReject     []string `yaml:"name_reject"`
		Confirm        []string `yaml:"confirm"`
		Edit           []string `yaml:"edit"`
		UseExisting    []string `yaml:"use_existing"`
		UpdateExisting []string `yaml:"update_existing"`
	} `yaml:"keywords"`
	FAQ map[string]string `yaml:"faq"`
}

// LoadConversationFile reads path. An empty path returns an empty file.
func LoadConversationFile(path string) (*ConversationFile, error) {
	out := &ConversationFile{}
	if strings.TrimSpace(path) == "" {
		return out, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keywords file o'qilmadi: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("keywords file noto'g'ri: %w", err)
	}
	for intent := range out.FAQ {
		switch intent {
		case usecase.FAQLocation, usecase.FAQDelivery, usecase.FAQPayment:
		default:
			return nil, fmt.Errorf("keywords file: noma'lum faq bo'limi %q", intent)
		}
	}
	return out, nil
}

// KeywordsOverrides returns the defaults with the file's groups applied.
func (f *ConversationFile) KeywordsOverrides() usecase.Keywords {
	k := f.Keywords
	return usecase.DefaultKeywords().Merge(usecase.Keywords{
		Delete:         k.Delete,
		Replace:        k.Replace,
		CartClear:      k.CartClear,
		Greeting:       k.Greeting,
		Location:       k.Location,
		Delivery:       k.Delivery,
		Payment:        k.Payment,
		Catalog:        k.Catalog,
		Checkout:       k.Checkout,
		OrderIntent:    k.OrderIntent,
		NameReject:     k.NameReject,
		Confirm:        k.Confirm,
		Edit:           k.Edit,
		UseExisting:    k.UseExisting,
		UpdateExisting: k.UpdateExisting,
	})
}

// FAQAnswers returns the default answers with the file's texts applied.
func (f *ConversationFile) FAQAnswers() usecase.StaticFAQ {
	return usecase.DefaultFAQ().WithOverrides(f.FAQ)
}
