package database

import (
	"log"
	"time"

	"github.com/lib/pq"
)

// Canal NOTIFY alimentado por triggers de linha em opportunities e
// contacts. O payload é ignorado de propósito: quem assina só re-busca.
const changeChannel = "crm_changes"

// Subscription é a assinatura de mudanças do CRM. Close() encerra a
// goroutine e a conexão de escuta.
type Subscription struct {
	listener *pq.Listener
	done     chan struct{}
}

// SubscribeToChanges abre uma conexão LISTEN dedicada e invoca callback
// a cada insert/update/delete nas tabelas do CRM. A reconexão é do
// próprio pq.Listener; depois de reconectar ele dispara um evento de
// reconexão e o callback roda para o assinante re-buscar o que perdeu.
func SubscribeToChanges(connString string, callback func()) (*Subscription, error) {
	listener := pq.NewListener(connString, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Printf("⚠️ Listener: evento %d com erro: %v", ev, err)
			}
		})

	if err := listener.Listen(changeChannel); err != nil {
		listener.Close()
		return nil, err
	}

	sub := &Subscription{
		listener: listener,
		done:     make(chan struct{}),
	}

	go sub.loop(callback)

	return sub, nil
}

func (s *Subscription) loop(callback func()) {
	listenLoop(s.done, s.listener.Notify, func() { go s.listener.Ping() }, callback)
}

// listenLoop roda até done fechar ou o canal de notificações fechar
// (Close encerra os dois; checar ok evita callbacks espúrios do canal
// fechado durante o shutdown).
func listenLoop(done <-chan struct{}, notify <-chan *pq.Notification, keepalive, callback func()) {
	for {
		select {
		case <-done:
			return
		case n, ok := <-notify:
			if !ok {
				return
			}
			// n == nil sinaliza reconexão; também vale um re-fetch
			if n != nil {
				log.Printf("🔔 Mudança no CRM detectada (canal %s)", n.Channel)
			}
			callback()
		case <-time.After(90 * time.Second):
			// Mantém a conexão viva atrás de proxies que matam idle
			keepalive()
		}
	}
}

func (s *Subscription) Close() error {
	close(s.done)
	return s.listener.Close()
}
