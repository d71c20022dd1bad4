package providers

import (
	"github.com/smallbiznis/eventory/internal/providers/email"
	"github.com/smallbiznis/eventory/internal/providers/pdf"
	"github.com/smallbiznis/eventory/internal/providers/slack"
	"github.com/smallbiznis/eventory/internal/providers/storage"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	slack.Module,
	pdf.Module,
	storage.Module,
)
