package service

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"fintrack/config"
	"fintrack/models"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 是否已启用
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

// SendPlanEmail 发送计划摘要
func (s *EmailService) SendPlanEmail(toEmail, username string, plan *models.AIPlan) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	subject := fmt.Sprintf("[FinTrack] Seu plano: %s", plan.Title)
	body := s.generatePlanEmailBody(username, plan)

	return s.sendEmail(toEmail, subject, body)
}

// planSummary 邮件中展示的计划内容
type planSummary struct {
	Overview struct {
		Objective string `json:"objective"`
		Summary   string `json:"summary"`
	} `json:"overview"`
	Strategy struct {
		Title string   `json:"title"`
		Text  string   `json:"text"`
		Steps []string `json:"steps"`
	} `json:"strategy"`
	Goals struct {
		Items []struct {
			Title    string `json:"title"`
			Deadline string `json:"deadline"`
			Category string `json:"category"`
		} `json:"items"`
	} `json:"goals"`
	Risks []struct {
		Title    string `json:"title"`
		Severity string `json:"severity"`
	} `json:"risks"`
}

// generatePlanEmailBody 生成计划邮件内容
func (s *EmailService) generatePlanEmailBody(username string, plan *models.AIPlan) string {
	var spec planSummary
	_ = json.Unmarshal(plan.Spec, &spec)

	var steps strings.Builder
	for _, step := range spec.Strategy.Steps {
		fmt.Fprintf(&steps, "<li>%s</li>", html.EscapeString(step))
	}
	var goals strings.Builder
	for _, g := range spec.Goals.Items {
		fmt.Fprintf(&goals, "<li><strong>%s</strong> %s <span class=\"muted\">%s</span></li>",
			html.EscapeString(g.Title), html.EscapeString(g.Deadline), html.EscapeString(g.Category))
	}
	var risks strings.Builder
	for _, r := range spec.Risks {
		fmt.Fprintf(&risks, "<li>[%s] %s</li>", html.EscapeString(r.Severity), html.EscapeString(r.Title))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { padding: 30px; }
        .content p, .content li { color: #333; line-height: 1.7; }
        .muted { color: #6c757d; font-size: 12px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
        </div>
        <div class="content">
            <p>Olá, <strong>%s</strong>!</p>
            <p><strong>Objetivo:</strong> %s</p>
            <p>%s</p>
            <h3>%s</h3>
            <ol>%s</ol>
            <h3>Metas</h3>
            <ul>%s</ul>
            <h3>Riscos</h3>
            <ul>%s</ul>
        </div>
        <div class="footer">
            <p>Este e-mail foi enviado automaticamente, não responda.</p>
        </div>
    </div>
</body>
</html>
`,
		html.EscapeString(plan.Title),
		html.EscapeString(username),
		html.EscapeString(firstNonEmpty(spec.Overview.Objective, plan.Objective)),
		html.EscapeString(spec.Overview.Summary),
		html.EscapeString(firstNonEmpty(spec.Strategy.Title, "Estratégia")),
		steps.String(),
		goals.String(),
		risks.String(),
	)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
