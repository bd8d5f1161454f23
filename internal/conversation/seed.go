package conversation

// SeedContacts returns the demo roster.
func SeedContacts() []Contact {
	return []Contact{
		{ID: "1", Name: "João Silva", LastMessagePreview: "Oi! Como você está?", LastActivityLabel: "14:30", UnreadCount: 2, Online: true, Phone: "+55 11 99999-9999"},
		{ID: "2", Name: "Maria Santos", LastMessagePreview: "Reunião às 15h confirmada", LastActivityLabel: "13:45", UnreadCount: 0, Online: false, Phone: "+55 11 88888-8888"},
		{ID: "3", Name: "Pedro Costa", LastMessagePreview: "Obrigado pela ajuda!", LastActivityLabel: "12:20", UnreadCount: 1, Online: true, Phone: "+55 11 77777-7777"},
		{ID: "4", Name: "Ana Oliveira", LastMessagePreview: "Vamos nos encontrar amanhã?", LastActivityLabel: "11:15", UnreadCount: 0, Online: false, Phone: "+55 11 66666-6666"},
		{ID: "5", Name: "Carlos Lima", LastMessagePreview: "Projeto finalizado com sucesso!", LastActivityLabel: "Ontem", UnreadCount: 3, Online: true, Phone: "+55 11 55555-5555"},
	}
}

// SeedMessages is the default seed: the same short exchange for every
// contact.
func SeedMessages(Contact) []Message {
	return []Message{
		{ID: "1", Content: "Oi! Como você está?", CreatedAtLabel: "14:25", Origin: Remote, Delivery: Read},
		{ID: "2", Content: "Estou bem, obrigado! E você?", CreatedAtLabel: "14:26", Origin: Local, Delivery: Read},
		{ID: "3", Content: "Também estou bem! Vamos nos encontrar hoje?", CreatedAtLabel: "14:28", Origin: Remote, Delivery: Read},
		{ID: "4", Content: "Claro! Que horas seria bom para você?", CreatedAtLabel: "14:29", Origin: Local, Delivery: Delivered},
	}
}
