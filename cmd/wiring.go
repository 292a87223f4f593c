package main

import (
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/wellness-booking/internal/config"
	"github.com/Leganyst/wellness-booking/internal/notify"
	"github.com/Leganyst/wellness-booking/internal/service"
)

// buildSinks собирает маршрутизатор уведомлений по конфигурации.
// Каналы без внешнего приёмника пишутся в лог, если notify.log включён.
func buildSinks(cfg *config.Config, log logrus.FieldLogger) (notify.Router, func()) {
	router := notify.Router{}
	var closers []func() error

	n := cfg.Notify
	if n.Resend.Enabled {
		router[notify.ChannelEmail] = notify.NewResendSink(n.Resend.BaseURL, n.Resend.APIKey, n.Resend.From, nil)
	}
	if n.Twilio.Enabled {
		router[notify.ChannelSMS] = notify.NewTwilioSink(n.Twilio.BaseURL, n.Twilio.AccountSID, n.Twilio.AuthToken, n.Twilio.From, nil)
	}
	if n.Telegram.Enabled {
		bot, err := notify.NewTelegramBot(n.Telegram.BotToken)
		if err != nil {
			log.WithError(err).Warn("telegram disabled")
		} else {
			router[notify.ChannelTelegram] = notify.NewTelegramSink(bot)
		}
	}

	var events notify.Fanout
	if n.AMQP.Enabled {
		conn, err := notify.DialAMQP(n.AMQP.URL, n.AMQP.Queue)
		if err != nil {
			log.WithError(err).Warn("rabbitmq disabled")
		} else {
			events = append(events, notify.NewAMQPSink(conn.Channel, n.AMQP.Exchange, conn.Queue))
			closers = append(closers, conn.Close)
		}
	}
	if n.Kafka.Enabled {
		sink := notify.NewKafkaSink(notify.NewKafkaWriter(n.Kafka.Brokers, n.Kafka.Topic))
		events = append(events, sink)
		closers = append(closers, sink.Close)
	}
	if len(events) > 0 {
		router[notify.ChannelEvent] = events
	}

	if n.Log {
		logSink := notify.NewLogSink(log)
		for _, ch := range []notify.Channel{notify.ChannelEmail, notify.ChannelSMS, notify.ChannelTelegram} {
			if !router.Has(ch) {
				router[ch] = logSink
			}
		}
	}

	return router, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.WithError(err).Warn("close notification sink")
			}
		}
	}
}

// chatIfRouted отдаёт chat id только при настроенном Telegram-приёмнике.
func chatIfRouted(r notify.Router, chatID string) string {
	if !r.Has(notify.ChannelTelegram) {
		return ""
	}
	return chatID
}

func buildCatalog(entries []config.CatalogEntry) (*service.Catalog, error) {
	items := make([]service.CatalogItem, 0, len(entries))
	for _, e := range entries {
		price, err := e.PriceDecimal()
		if err != nil {
			return nil, err
		}
		items = append(items, service.CatalogItem{
			ID:       e.ID,
			Name:     e.Name,
			Price:    price,
			Duration: e.Duration,
		})
	}
	return service.NewCatalog(items), nil
}
