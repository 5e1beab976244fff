package zookeeper

import (
	"errors"
	"time"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/warehouse/locks"

// ErrNotAcquired is returned by TryLock when another node holds the lock.
var ErrNotAcquired = errors.New("lock held by another node")

// Conn wraps a ZooKeeper connection.
type Conn struct {
	*zk.Conn
}

// Connect dials the ensemble with a 10s session timeout.
func Connect(addrs []string) (*Conn, error) {
	c, _, err := zk.Connect(addrs, 10*time.Second)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: c}, nil
}

// Lock is a coarse, non-blocking distributed lock backed by an ephemeral
// node. The expiry sweeper uses it so only one replica sweeps per tick;
// losing the lock on session loss is acceptable because the sweep itself is
// idempotent.
type Lock struct {
	conn *Conn
	path string
	held bool
}

// NewLock creates a lock for resource under the shared lock root.
func NewLock(conn *Conn, resource string) (*Lock, error) {
	if err := ensurePath(conn, lockRoot); err != nil {
		return nil, err
	}
	return &Lock{conn: conn, path: lockRoot + "/" + resource}, nil
}

// TryLock attempts to take the lock without blocking. Returns ErrNotAcquired
// when the ephemeral node already exists.
func (l *Lock) TryLock() error {
	_, err := l.conn.Create(l.path, []byte{}, zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
	if err == zk.ErrNodeExists {
		return ErrNotAcquired
	}
	if err != nil {
		return err
	}
	l.held = true
	return nil
}

// Unlock releases the lock if held. A missing node is not an error: the
// session may have expired, which already released the lock.
func (l *Lock) Unlock() error {
	if !l.held {
		return nil
	}
	l.held = false
	err := l.conn.Delete(l.path, -1)
	if err != nil && err != zk.ErrNoNode {
		return err
	}
	return nil
}

func ensurePath(conn *Conn, path string) error {
	exists, _, err := conn.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	// build intermediate nodes one level at a time
	acc := ""
	for i := 1; i < len(path); i++ {
		if path[i] == '/' {
			acc = path[:i]
			if _, err := conn.Create(acc, []byte{}, 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
				return err
			}
		}
	}
	if _, err := conn.Create(path, []byte{}, 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
		return err
	}
	return nil
}
