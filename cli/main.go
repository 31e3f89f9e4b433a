package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

// Model defines the application state
type Model struct {
	mainMenu    list.Model
	orderList   list.Model
	robotView   table.Model
	orderDetail Order
	health      Health
	spinner     spinner.Model
	client      *ApiClient
	currentView string
	message     string
	error       string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := []list.Item{
		item{title: "Manufacturing Orders", desc: "View orders and dispatch robot tasks"},
		item{title: "Robots", desc: "View registered work-center robots"},
		item{title: "Server Health", desc: "Check the integration server status"},
		item{title: "Exit", desc: "Exit the application"},
	}

	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "MQTT Integration CLI"

	orderList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	orderList.Title = "Manufacturing Orders"

	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Identifier", Width: 20},
		{Title: "Name", Width: 25},
	}
	robotTable := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	return Model{
		mainMenu:    mainMenu,
		orderList:   orderList,
		robotView:   robotTable,
		spinner:     s,
		client:      NewApiClient(),
		currentView: "main",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if m.currentView == "main" {
				selected, ok := m.mainMenu.SelectedItem().(item)
				if ok {
					switch selected.title {
					case "Exit":
						return m, tea.Quit
					case "Manufacturing Orders":
						m.currentView = "orders"
						return m, fetchOrders(m.client)
					case "Robots":
						m.currentView = "robots"
						return m, fetchRobots(m.client)
					case "Server Health":
						m.currentView = "health"
						return m, fetchHealth(m.client)
					}
				}
			} else if m.currentView == "orders" {
				if selected, ok := m.orderList.SelectedItem().(orderItem); ok {
					m.currentView = "order_detail"
					return m, fetchOrderDetails(m.client, selected.id)
				}
			}
		case "esc":
			if m.currentView == "order_detail" {
				m.currentView = "orders"
				m.message = ""
				m.error = ""
				return m, fetchOrders(m.client)
			} else if m.currentView != "main" {
				m.currentView = "main"
				m.message = ""
				m.error = ""
			}
		case "s":
			if m.currentView == "order_detail" {
				return m, startProcessing(m.client, m.orderDetail.ID)
			}
		case "x":
			if m.currentView == "order_detail" {
				return m, stopProcessing(m.client, m.orderDetail.ID)
			}
		case "c":
			if m.currentView == "order_detail" {
				return m, performAction(m.client, m.orderDetail.ID, "cancel")
			}
		case "r":
			if m.currentView == "order_detail" {
				return m, fetchOrderDetails(m.client, m.orderDetail.ID)
			} else if m.currentView == "orders" {
				return m, fetchOrders(m.client)
			}
		}
	case ordersMsg:
		m.orderList.SetItems(convertOrdersToItems(msg.orders))
		return m, nil
	case orderDetailMsg:
		m.orderDetail = msg.order
		return m, nil
	case robotsMsg:
		rows := make([]table.Row, len(msg.robots))
		for i, r := range msg.robots {
			rows[i] = table.Row{fmt.Sprintf("%d", r.ID), r.Identifier, r.Name}
		}
		m.robotView.SetRows(rows)
		return m, nil
	case healthMsg:
		m.health = msg.health
		return m, nil
	case errorMsg:
		m.error = msg.err
		m.message = ""
		return m, nil
	case confirmMsg:
		m.error = ""
		m.message = msg.message
		if m.currentView == "order_detail" {
			return m, fetchOrderDetails(m.client, m.orderDetail.ID)
		}
		return m, fetchOrders(m.client)
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "orders":
		m.orderList, cmd = m.orderList.Update(msg)
	case "robots":
		m.robotView, cmd = m.robotView.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case "main":
		return docStyle.Render(m.mainMenu.View())
	case "orders":
		help := "\nPress 'enter' for details, 'r' to refresh, 'esc' to go back\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Manufacturing Orders") + "\n\n" + m.orderList.View() + help)
	case "order_detail":
		return docStyle.Render(orderDetailView(m.orderDetail, m.message, m.error))
	case "robots":
		return docStyle.Render(titleStyle.Render("Robots") + "\n\n" + m.robotView.View() + "\n\nPress 'esc' to go back")
	case "health":
		return docStyle.Render(healthView(m.health))
	default:
		return "Loading..."
	}
}

// Custom message types for the tea.Model
type ordersMsg struct {
	orders []Order
}

type orderDetailMsg struct {
	order Order
}

type robotsMsg struct {
	robots []Robot
}

type healthMsg struct {
	health Health
}

type errorMsg struct {
	err string
}

type confirmMsg struct {
	message string
}

// orderItem represents an order in the list
type orderItem struct {
	id    uint
	title string
	desc  string
}

func (i orderItem) Title() string       { return i.title }
func (i orderItem) Description() string { return i.desc }
func (i orderItem) FilterValue() string { return i.title }

// fetchOrders retrieves orders from the API
func fetchOrders(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		orders, err := client.GetOrders()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching orders: %v", err)}
		}
		return ordersMsg{orders: orders}
	}
}

// fetchOrderDetails retrieves details for a specific order
func fetchOrderDetails(client *ApiClient, id uint) tea.Cmd {
	return func() tea.Msg {
		order, err := client.GetOrder(id)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching order details: %v", err)}
		}
		return orderDetailMsg{order: *order}
	}
}

// fetchRobots retrieves the registered robots
func fetchRobots(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		robots, err := client.GetRobots()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching robots: %v", err)}
		}
		return robotsMsg{robots: robots}
	}
}

// fetchHealth checks the integration server health
func fetchHealth(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		health, err := client.CheckHealth()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error checking health: %v", err)}
		}
		return healthMsg{health: *health}
	}
}

// startProcessing dispatches the order's robot task
func startProcessing(client *ApiClient, id uint) tea.Cmd {
	return func() tea.Msg {
		if err := client.StartProcessing(id); err != nil {
			return errorMsg{err: fmt.Sprintf("Error starting processing: %v", err)}
		}
		return confirmMsg{message: "Robot task dispatched"}
	}
}

// stopProcessing aborts the order's robot task
func stopProcessing(client *ApiClient, id uint) tea.Cmd {
	return func() tea.Msg {
		if err := client.StopProcessing(id); err != nil {
			return errorMsg{err: fmt.Sprintf("Error stopping processing: %v", err)}
		}
		return confirmMsg{message: "Robot task aborted, order reset to draft"}
	}
}

// performAction runs a manual order action
func performAction(client *ApiClient, id uint, action string) tea.Cmd {
	return func() tea.Msg {
		if err := client.PerformAction(id, action); err != nil {
			return errorMsg{err: fmt.Sprintf("Error performing %s: %v", action, err)}
		}
		return confirmMsg{message: fmt.Sprintf("Action %s applied", action)}
	}
}

// convertOrdersToItems converts API orders to list items
func convertOrdersToItems(orders []Order) []list.Item {
	items := make([]list.Item, len(orders))
	for i, order := range orders {
		items[i] = orderItem{
			id:    order.ID,
			title: fmt.Sprintf("%s (#%d)", order.Name, order.ID),
			desc:  fmt.Sprintf("Product: %s - State: %s - Qty: %g", order.Product.Name, order.State, order.Quantity),
		}
	}
	return items
}

// orderDetailView creates a detailed view of an order
func orderDetailView(order Order, message, errText string) string {
	view := titleStyle.Render(fmt.Sprintf("%s (#%d)", order.Name, order.ID)) + "\n\n"
	view += fmt.Sprintf("Product: %s\n", order.Product.Name)
	view += fmt.Sprintf("State: %s\n", order.State)
	view += fmt.Sprintf("Quantity: %g\n", order.Quantity)
	if order.RemoteTaskID != "" {
		view += fmt.Sprintf("Remote Task: %s\n", order.RemoteTaskID)
	}
	if order.BinaryPayload != "" {
		view += fmt.Sprintf("Payload: %s\n", order.BinaryPayload)
	}

	view += "\nWork Orders:\n"
	if len(order.WorkOrders) == 0 {
		view += "No work orders\n"
	}
	for i, wo := range order.WorkOrders {
		view += fmt.Sprintf("%d. %s - %s\n", i+1, wo.Name, wo.State)
	}

	view += "\nPress 's' to start, 'x' to stop, 'c' to cancel, 'r' to refresh, 'esc' to go back\n"
	if message != "" {
		view += successStyle.Render(message) + "\n"
	}
	if errText != "" {
		view += errorStyle.Render(errText) + "\n"
	}

	return view
}

// healthView renders the server health summary
func healthView(health Health) string {
	view := titleStyle.Render("Server Health") + "\n\n"
	if health.Status == "healthy" {
		view += successStyle.Render("healthy") + "\n\n"
	} else {
		view += errorStyle.Render(health.Status) + "\n\n"
	}
	view += fmt.Sprintf("Message: %s\n", health.Message)
	view += fmt.Sprintf("Database accessible: %v\n", health.DatabaseAccessible)
	view += fmt.Sprintf("Production records: %d\n", health.ProductionRecords)
	view += "\nPress 'esc' to go back"
	return view
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
