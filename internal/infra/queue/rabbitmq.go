package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.crm"
	DLXName      = "ex.crm.dlx" // Dead Letter Exchange

	RecoveryQueueName = "q.recovery"
	RecoveryDLQName   = "q.recovery.dlq"
	RecoveryKey       = "k.recovery"

	// Eventos de reload: o board escuta essa fila para se re-buscar
	// (sync concluído ou mudança detectada no banco)
	BoardQueueName = "q.board.reload"
	BoardKey       = "k.board.reload"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(RecoveryDLQName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	if err = ch.QueueBind(RecoveryDLQName, RecoveryKey, DLXName, false, nil); err != nil {
		return err
	}

	if err = ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	// Mensagens de recuperação rejeitadas caem na DLQ
	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RecoveryKey,
	}

	_, err = ch.QueueDeclare(RecoveryQueueName, true, false, false, false, args)
	if err != nil {
		return err
	}

	if err = ch.QueueBind(RecoveryQueueName, RecoveryKey, ExchangeName, false, nil); err != nil {
		return err
	}

	_, err = ch.QueueDeclare(BoardQueueName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	return ch.QueueBind(BoardQueueName, BoardKey, ExchangeName, false, nil)
}
