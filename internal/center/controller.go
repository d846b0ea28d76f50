// Package center holds the notification center's page logic: tabs, cards,
// stats, search, optimistic read state and live updates. It has no I/O of its
// own beyond the API it is given.
package center

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/washdesk/internal/model"
	"github.com/dukerupert/washdesk/internal/websocket"
)

type State string

const (
	StateLoadingTypes State = "loading types"
	StateLoadingList  State = "loading list"
	StateIdle         State = "idle"
	StateRefreshing   State = "refreshing"
)

// API is the subset of the admin client the controller uses.
type API interface {
	Types(ctx context.Context) ([]string, error)
	List(ctx context.Context, typ string) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllRead(ctx context.Context) (int64, error)
}

// Controller is safe for concurrent use. The lock is never held across
// API calls.
type Controller struct {
	api    API
	logger *slog.Logger
	now    func() time.Time
	onNew  func(model.Notification)

	mu          sync.Mutex
	state       State
	types       []string
	typesLoaded bool
	activeTab   string
	list        []model.Notification
	unread      int
	query       string
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithOnNew registers fn to run after each pushed notification is added.
// It is called without the controller lock held.
func WithOnNew(fn func(model.Notification)) Option {
	return func(c *Controller) { c.onNew = fn }
}

func New(api API, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		api:       api,
		logger:    logger,
		now:       time.Now,
		state:     StateLoadingTypes,
		types:     []string{AllTab},
		activeTab: AllTab,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the category list (first call only) and then the
// notifications for the active tab.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	needTypes := !c.typesLoaded
	if needTypes {
		c.state = StateLoadingTypes
	}
	c.mu.Unlock()

	if needTypes {
		types, err := c.api.Types(ctx)
		c.mu.Lock()
		if err != nil {
			c.logger.Error("load notification types", "error", err)
		} else {
			c.types = append([]string{AllTab}, withoutAll(types)...)
			c.typesLoaded = true
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.state = StateLoadingList
	c.mu.Unlock()

	c.FetchNotifications(ctx)
}

// SetTab switches the active category and refetches. Selecting the active
// tab again still refetches.
func (c *Controller) SetTab(ctx context.Context, tab string) {
	if tab == "" {
		tab = AllTab
	}
	c.mu.Lock()
	c.activeTab = tab
	c.mu.Unlock()

	c.FetchNotifications(ctx)
}

// FetchNotifications replaces the list with the server's view of the active
// tab and recomputes the unread counter. Failures are logged and leave the
// previous list in place.
func (c *Controller) FetchNotifications(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateLoadingList {
		c.state = StateRefreshing
	}
	filter := c.activeTab
	c.mu.Unlock()

	if filter == AllTab {
		filter = ""
	}
	list, err := c.api.List(ctx, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	if err != nil {
		c.logger.Error("fetch notifications", "tab", c.activeTab, "error", err)
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	c.list = list
	c.unread = countUnread(list)
}

// MarkAllAsRead marks every loaded item read and zeroes the counter before
// confirming with the server. There is no rollback on failure.
func (c *Controller) MarkAllAsRead(ctx context.Context) error {
	c.mu.Lock()
	for i := range c.list {
		c.list[i].IsRead = true
	}
	c.unread = 0
	c.mu.Unlock()

	_, err := c.api.MarkAllRead(ctx)
	if err != nil {
		c.logger.Error("mark all as read", "error", err)
	}
	return err
}

// HandleMarkAsRead toggles the item's read flag. currentStatus is the flag
// before the toggle: true (read -> unread) adds one to the counter, false
// subtracts one. The counter never goes below zero.
func (c *Controller) HandleMarkAsRead(id string, currentStatus bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.list {
		if c.list[i].ID == id {
			c.list[i].IsRead = !c.list[i].IsRead
		}
	}
	if currentStatus {
		c.unread++
	} else if c.unread > 0 {
		c.unread--
	}
}

// OnNewNotification prepends a pushed notification. Duplicates are not
// filtered and the unread counter is left alone.
func (c *Controller) OnNewNotification(n model.Notification) {
	c.mu.Lock()
	c.list = append([]model.Notification{n}, c.list...)
	fn := c.onNew
	c.mu.Unlock()

	if fn != nil {
		fn(n)
	}
}

// HandleEvent dispatches a real-time event. Unknown events are ignored.
func (c *Controller) HandleEvent(event string, data json.RawMessage) {
	if event != websocket.EventNewNotification {
		return
	}
	var payload model.NewNotificationEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn("decode new_notification", "error", err)
		return
	}
	c.OnNewNotification(payload.Notification)
}

// SetQuery sets the client-side search text.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

// Visible returns the loaded items that match the search text.
func (c *Controller) Visible() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Search(c.list, c.query)
}

// Card returns a card for the loaded item with the given id, wired to this
// controller, or nil.
func (c *Controller) Card(id string) *Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.list {
		if n.ID == id {
			return NewCard(n, c.HandleMarkAsRead, c.api)
		}
	}
	return nil
}

// TabBar returns the tab bar wired to SetTab.
func (c *Controller) TabBar(ctx context.Context) TabBar {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TabBar{
		Types:    append([]string(nil), c.types...),
		Active:   c.activeTab,
		OnSelect: func(name string) { c.SetTab(ctx, name) },
	}
}

func (c *Controller) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CardView is the derived, render-ready form of a notification.
type CardView struct {
	Notification model.Notification
	TimeAgo      string
	Theme        Theme
	Urgent       bool
	Actions      []Action
}

// Snapshot is a consistent view of the page.
type Snapshot struct {
	State     State
	Tabs      []Tab
	ActiveTab string
	Stats     Stats
	Unread    int
	Query     string
	Cards     []CardView
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	bar := TabBar{Types: c.types, Active: c.activeTab}
	s := Snapshot{
		State:     c.state,
		Tabs:      bar.Tabs(),
		ActiveTab: c.activeTab,
		Stats:     ComputeStats(c.list, now),
		Unread:    c.unread,
		Query:     c.query,
	}
	for _, n := range Search(c.list, c.query) {
		card := NewCard(n, nil, nil)
		s.Cards = append(s.Cards, CardView{
			Notification: n,
			TimeAgo:      card.TimeAgo(now),
			Theme:        card.Theme(),
			Urgent:       card.Urgent(now),
			Actions:      card.Actions(),
		})
	}
	return s
}

func countUnread(list []model.Notification) int {
	n := 0
	for _, item := range list {
		if !item.IsRead {
			n++
		}
	}
	return n
}

func withoutAll(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t != AllTab {
			out = append(out, t)
		}
	}
	return out
}
