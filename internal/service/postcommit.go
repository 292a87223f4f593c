package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/wellness-booking/internal/model"
)

// RetryPolicy: сколько раз и с какой паузой повторять шаг.
// Пауза растёт как base * 2^(attempt-1), но не больше 16 * base.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	if attempt <= 1 || p.BaseDelay <= 0 {
		return p.BaseDelay
	}
	d := p.BaseDelay * time.Duration(1<<(attempt-1))
	if limit := p.BaseDelay * 16; d > limit {
		d = limit
	}
	return d
}

// Hook: побочный шаг, выполняемый после фиксации основной операции.
type Hook struct {
	Name   string
	Policy RetryPolicy
	Run    func(ctx context.Context) error
}

// PostCommit выполняет хуки и логирует их сбои. Сбой хука не отменяет
// уже зафиксированную операцию.
type PostCommit struct {
	log     logrus.FieldLogger
	timeout time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
	wg      sync.WaitGroup
}

func NewPostCommit(log logrus.FieldLogger, timeout time.Duration) *PostCommit {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PostCommit{log: log, timeout: timeout, sleep: sleepCtx}
}

// Run выполняет хуки по порядку и возвращает объединённые
// *model.PartialWorkflowError упавших шагов.
func (p *PostCommit) Run(ctx context.Context, fields logrus.Fields, hooks ...Hook) error {
	// Хуки переживают отмену запроса: операция уже зафиксирована.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	var errs []error
	for _, h := range hooks {
		err := p.runOne(ctx, h)
		if err == nil {
			continue
		}
		perr := &model.PartialWorkflowError{Step: h.Name, Err: err}
		p.log.WithFields(fields).
			WithField("step", h.Name).
			WithError(err).
			Warn("post-commit step failed")
		errs = append(errs, perr)
	}
	return errors.Join(errs...)
}

// Go выполняет хуки в фоне и сразу возвращает управление.
// Ошибки только логируются.
func (p *PostCommit) Go(ctx context.Context, fields logrus.Fields, hooks ...Hook) {
	if len(hooks) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.Run(ctx, fields, hooks...)
	}()
}

// Wait ждёт завершения фоновых хуков, запущенных через Go.
func (p *PostCommit) Wait() {
	p.wg.Wait()
}

func (p *PostCommit) runOne(ctx context.Context, h Hook) error {
	attempts := h.Policy.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = h.Run(ctx); err == nil {
			return nil
		}
		if !retryable(err) || attempt == attempts {
			break
		}
		if serr := p.sleep(ctx, h.Policy.backoff(attempt)); serr != nil {
			return errors.Join(err, serr)
		}
	}
	return err
}

// Ошибки валидации повтором не лечатся.
func retryable(err error) bool {
	return !errors.Is(err, model.ErrValidation)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
