package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"app/internal/usecase"
)

// 接続からQUITまでの上限。SMTPサーバが固まっても注文レスポンスを道連れにしない。
const sendTimeout = 10 * time.Second

// SMTPで注文確定メールを送る。送信失敗は呼び出し側でログに残すだけ。
type EmailNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailNotifier(host, port, username, password, from string) *EmailNotifier {
	return &EmailNotifier{host: host, port: port, username: username, password: password, from: from}
}

func (n *EmailNotifier) NotifyOrderConfirmed(_ context.Context, order usecase.OrderOutput) error {
	if n.host == "" || order.ReceiverEmail == "" {
		// SMTP未設定・宛先なしなら黙って何もしない
		return nil
	}

	to := order.ReceiverEmail
	subject := fmt.Sprintf("Order %s confirmed", order.OrderCode)

	var b strings.Builder
	fmt.Fprintf(&b, "Your order %s has been received.\r\n\r\n", order.OrderCode)
	for _, it := range order.Items {
		fmt.Fprintf(&b, "- variant %d x%d: %d\r\n", it.VariantID, it.Quantity, it.SubTotal)
	}
	fmt.Fprintf(&b, "\r\nSubtotal: %d\r\nShipping: %d\r\nDiscount: -%d\r\nTotal: %d\r\n",
		order.SubTotal, order.ShippingFee, order.VoucherDiscountAmount, order.TotalAmount)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", n.from, to, subject, b.String())

	return n.send(to, msg)
}

func (n *EmailNotifier) send(to, msg string) error {
	addr := n.host + ":" + n.port
	conn, err := net.DialTimeout("tcp", addr, sendTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	//やり取り全体に期限を掛ける
	if err := conn.SetDeadline(time.Now().Add(sendTimeout)); err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.host}); err != nil {
			return err
		}
	}
	if n.username != "" {
		if err := c.Auth(smtp.PlainAuth("", n.username, n.password, n.host)); err != nil {
			return err
		}
	}

	if err := c.Mail(n.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
