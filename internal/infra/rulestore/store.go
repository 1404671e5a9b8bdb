package rulestore

import (
	"context"
	"log/slog"

	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/classifier"
	"github.com/yanqian/familylog/internal/domain/shopping"
)

// ObjectReader fetches a whole object by key.
type ObjectReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// Keys names the override objects inside the bucket.
type Keys struct {
	Classifier string
	Advice     string
	Shopping   string
}

// Bundle is the rule set the engine runs with.
type Bundle struct {
	Rules      classifier.Rules
	Catalog    advice.Catalog
	Vocabulary shopping.Vocabulary
	// Overridden lists the keys loaded from object storage.
	Overridden []string
}

// Defaults returns the embedded rule set.
func Defaults() Bundle {
	return Bundle{
		Rules:      classifier.DefaultRules(),
		Catalog:    advice.DefaultCatalog(),
		Vocabulary: shopping.DefaultVocabulary(),
	}
}

// Load reads each override; a missing or broken object keeps the embedded default.
// reader may be nil.
func Load(ctx context.Context, reader ObjectReader, keys Keys, logger *slog.Logger) Bundle {
	bundle := Defaults()
	if reader == nil {
		return bundle
	}
	logger = logger.With("component", "rulestore")

	if raw, ok := fetch(ctx, reader, keys.Classifier, logger); ok {
		if rules, err := classifier.ParseRules(raw); err != nil {
			logger.Warn("classifier override rejected", "key", keys.Classifier, "error", err)
		} else {
			bundle.Rules = rules
			bundle.Overridden = append(bundle.Overridden, keys.Classifier)
		}
	}
	if raw, ok := fetch(ctx, reader, keys.Advice, logger); ok {
		if catalog, err := advice.ParseCatalog(raw); err != nil {
			logger.Warn("advice override rejected", "key", keys.Advice, "error", err)
		} else {
			bundle.Catalog = catalog
			bundle.Overridden = append(bundle.Overridden, keys.Advice)
		}
	}
	if raw, ok := fetch(ctx, reader, keys.Shopping, logger); ok {
		if vocab, err := shopping.ParseVocabulary(raw); err != nil {
			logger.Warn("shopping override rejected", "key", keys.Shopping, "error", err)
		} else {
			bundle.Vocabulary = vocab
			bundle.Overridden = append(bundle.Overridden, keys.Shopping)
		}
	}
	if len(bundle.Overridden) > 0 {
		logger.Info("rule overrides loaded", "keys", bundle.Overridden)
	}
	return bundle
}

func fetch(ctx context.Context, reader ObjectReader, key string, logger *slog.Logger) ([]byte, bool) {
	if key == "" {
		return nil, false
	}
	raw, err := reader.Read(ctx, key)
	if err != nil {
		logger.Warn("rule override unavailable, using default", "key", key, "error", err)
		return nil, false
	}
	return raw, true
}
